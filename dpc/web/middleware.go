package web

import (
	"net"
	"net/http"

	"github.com/pborman/uuid"

	"github.com/dpcdirect/dpc-app/dpc/audit"
	"github.com/dpcdirect/dpc-app/dpc/constants"
	dpcErrors "github.com/dpcdirect/dpc-app/dpc/errors"
	"github.com/dpcdirect/dpc-app/dpc/models"
	"github.com/dpcdirect/dpc-app/dpc/responseutils"
	"github.com/dpcdirect/dpc-app/dpc/web/actorcontext"
)

func ConnectionClose(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		next.ServeHTTP(w, r)
	})
}

// ActorContext builds the request actor from the identity headers the
// gateway sets after authentication. Requests without identity run as
// ANONYMOUS; authorization decisions happen downstream.
func ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := models.Actor{
			ID:        uuid.Parse(r.Header.Get(constants.HeaderActorID)),
			Type:      models.ActorType(r.Header.Get(constants.HeaderActorType)),
			IPAddress: remoteIP(r),
			UserAgent: r.UserAgent(),
		}
		if actor.ID == nil || !validActorType(actor.Type) {
			actor.ID = uuid.NewRandom()
			actor.Type = models.ActorTypeAnonymous
		}

		next.ServeHTTP(w, r.WithContext(actorcontext.NewContext(r.Context(), actor)))
	})
}

func validActorType(t models.ActorType) bool {
	switch t {
	case models.ActorTypeAdmin, models.ActorTypeProvider, models.ActorTypeEmployer, models.ActorTypeBroker:
		return true
	}
	return false
}

func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequireAdmin rejects non-admin actors and reports the denial to the
// security audit stream.
func RequireAdmin(recorder audit.Auditor) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := actorcontext.FromContext(r.Context())
			if actor.Type != models.ActorTypeAdmin {
				recorder.RecordSecurity(models.SecurityAuditLog{
					ActorID:   actor.ID,
					ActorType: actor.Type,
					Action:    models.SecurityActionPermissionDenied,
					Severity:  models.SeverityMedium,
					Details:   map[string]interface{}{"path": r.URL.Path},
					IPAddress: actor.IPAddress,
					UserAgent: actor.UserAgent,
				})
				responseutils.WriteError(w, r, &dpcErrors.PermissionDeniedError{Msg: "administrator access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
