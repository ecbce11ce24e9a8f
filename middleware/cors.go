package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"helloworld/config"
)

var (
	// CORSMethods are the only methods advertised to cross-origin callers.
	CORSMethods = []string{
		fiber.MethodGet,
		fiber.MethodPost,
		fiber.MethodPut,
		fiber.MethodDelete,
		fiber.MethodOptions,
	}

	// CORSHeaders are the only request headers cross-origin callers may send.
	CORSHeaders = []string{fiber.HeaderContentType, fiber.HeaderAuthorization}

	// HostedSuffixes match the default subdomains of Render and Vercel deployments.
	HostedSuffixes = []string{"." + config.RenderDomain, ".vercel.app"}
)

// OriginPolicy decides which browser origins may call the API.
// It is implemented only by AllowAll and AllowList.
type OriginPolicy interface {
	isOriginPolicy()
}

// AllowAll accepts every origin.
type AllowAll struct{}

// AllowList accepts origins equal to one of Exact or ending with one of Suffixes.
type AllowList struct {
	Exact    []string
	Suffixes []string
}

func (AllowAll) isOriginPolicy()  {}
func (AllowList) isOriginPolicy() {}

// OriginAllowed reports whether policy admits origin.
func OriginAllowed(policy OriginPolicy, origin string) bool {
	switch p := policy.(type) {
	case AllowAll:
		return true
	case AllowList:
		for _, exact := range p.Exact {
			if origin == exact {
				return true
			}
		}
		for _, suffix := range p.Suffixes {
			if strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// PolicyFor derives the CORS policy from the runtime configuration.
// Outside production every origin is allowed.
func PolicyFor(cfg *config.Config) OriginPolicy {
	if !cfg.IsProd {
		return AllowAll{}
	}
	list := AllowList{Suffixes: append([]string(nil), HostedSuffixes...)}
	if cfg.FrontendURL != "" {
		list.Exact = []string{cfg.FrontendURL}
	}
	return list
}

// CORS creates the Fiber CORS middleware for policy. Allowed origins are
// reflected back; rejected origins get no Access-Control-Allow-Origin header.
func CORS(policy OriginPolicy) fiber.Handler {
	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return OriginAllowed(policy, origin)
		},
		AllowMethods: strings.Join(CORSMethods, ","),
		AllowHeaders: strings.Join(CORSHeaders, ","),
	})
}
