package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

var hardening = secure.New(secure.Options{
	ContentTypeNosniff:        true,
	FrameDeny:                 true,
	ReferrerPolicy:            "no-referrer",
	CrossOriginResourcePolicy: "same-site",
	STSSeconds:                15552000,
	STSIncludeSubdomains:      true,
	ForceSTSHeader:            true,
})

// SecurityHeaders sets the usual hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return hardening.Handler(next)
}
