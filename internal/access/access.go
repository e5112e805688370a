// Package access decides where a visitor may navigate. Routing is a pure
// function of (session, requested route); callers render or redirect based
// on the decision and never inspect roles themselves.
package access

import (
	"strings"

	"slotbook/internal/models"
)

const (
	RouteHome            = "/"
	RouteSellerDashboard = "/seller/dashboard"
	RouteBuyerDashboard  = "/buyer/dashboard"
)

// Decision is the outcome of a navigation check.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(target string) Decision {
	return Decision{RedirectTo: target}
}

// DashboardFor returns the dashboard route for a role.
func DashboardFor(role string) string {
	if role == models.RoleSeller {
		return RouteSellerDashboard
	}
	return RouteBuyerDashboard
}

// Resolve decides whether sess may visit route.
//
// Anonymous visitors may only see the home page; signed-in visitors are
// pushed from the home page to their dashboard; role-scoped areas redirect
// visitors of the other role to their own dashboard; anything unknown goes
// home.
func Resolve(sess *models.Session, route string) Decision {
	if sess == nil {
		if route == RouteHome {
			return allow()
		}
		return redirect(RouteHome)
	}

	switch {
	case route == RouteHome:
		return redirect(DashboardFor(sess.Role))
	case strings.HasPrefix(route, "/seller/"):
		if sess.Role == models.RoleSeller {
			return allow()
		}
		return redirect(DashboardFor(sess.Role))
	case strings.HasPrefix(route, "/buyer/"):
		if sess.Role == models.RoleBuyer {
			return allow()
		}
		return redirect(DashboardFor(sess.Role))
	default:
		return redirect(RouteHome)
	}
}
