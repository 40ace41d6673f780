package auth

import (
	"fmt"
	"linklyst/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Anonymous visitors get the public surface: profile pages, the click
	// redirect, the read-only API, and the auth entry points. Members get
	// the curation surface on top of that.
	policies := [][]string{
		{"anonymous", "/", "GET"},
		{"anonymous", "/login", "GET"},
		{"anonymous", "/login", "POST"},
		{"anonymous", "/register", "GET"},
		{"anonymous", "/register", "POST"},
		{"anonymous", "/auth/google", "GET"},
		{"anonymous", "/auth/google/callback", "GET"},
		{"anonymous", "/u/*", "GET"},
		{"anonymous", "/r/*", "GET"},
		{"anonymous", "/api/category/*", "GET"},
		{"anonymous", "/api/subcategory/*", "GET"},
		{"anonymous", "/api/stats/*", "GET"},
		{"anonymous", "/static/*", "GET"},

		{"member", "/dashboard", "GET"},
		{"member", "/category/*", "*"},
		{"member", "/subcategory/*", "*"},
		{"member", "/link/*", "*"},
		{"member", "/profile/*", "*"},
		{"member", "/logout", "*"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Granting the 'member' role all permissions of the 'anonymous' role.
	if has, _ := e.HasRoleForUser("member", "anonymous"); !has {
		if _, err := e.AddRoleForUser("member", "anonymous"); err != nil {
			log.Error(err, "Failed to add role 'member' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
