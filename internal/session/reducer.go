package session

import (
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/raphaelgruber/tenantchat/internal/store"
)

type bootstrapSucceeded struct{ user *models.UserSummary }

type bootstrapFailed struct{}

type loginStarted struct{}

type loginSucceeded struct{ result *models.LoginResult }

type loginFailed struct{ message string }

type loggedOut struct{}

func (bootstrapSucceeded) Type() string { return "session/bootstrap/fulfilled" }
func (bootstrapFailed) Type() string    { return "session/bootstrap/rejected" }
func (loginStarted) Type() string       { return "session/login/pending" }
func (loginSucceeded) Type() string     { return "session/login/fulfilled" }
func (loginFailed) Type() string        { return "session/login/rejected" }
func (loggedOut) Type() string          { return "session/logout" }

// reduce is the session reducer. Identity fields are always replaced together.
func reduce(s models.Session, action store.Action) models.Session {
	switch a := action.(type) {
	case bootstrapSucceeded:
		return authenticated(a.user, "", "")
	case bootstrapFailed:
		return anonymous("")
	case loginStarted:
		s.LoginPending = true
		s.Error = ""
		return s
	case loginSucceeded:
		return authenticated(a.result.User, a.result.Company, a.result.Role)
	case loginFailed:
		return anonymous(a.message)
	case loggedOut:
		return anonymous("")
	}
	return s
}

func authenticated(user *models.UserSummary, companyID, roleName string) models.Session {
	if companyID == "" {
		companyID = user.CompanyID
	}
	if roleName == "" {
		roleName = user.RoleName
	}
	return models.Session{
		User:            user,
		CompanyID:       companyID,
		CompanyName:     user.CompanyName,
		RoleName:        roleName,
		Permissions:     models.NewPermissionSet(user.Permissions...),
		IsAuthenticated: true,
		Status:          models.StatusReady,
	}
}

func anonymous(errMsg string) models.Session {
	return models.Session{
		Permissions: models.PermissionSet{},
		Status:      models.StatusReady,
		Error:       errMsg,
	}
}
