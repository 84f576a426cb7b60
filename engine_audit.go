package authkit

import (
	"context"
	"time"
)

const (
	auditLoginSuccess      = "LOGIN_SUCCESS"
	auditLoginFailed       = "LOGIN_FAILED"
	auditLoginMFARequired  = "LOGIN_MFA_REQUIRED"
	auditMFASetupRequested = "MFA_SETUP_REQUESTED"
	auditMFAVerifySuccess  = "MFA_VERIFICATION_SUCCESS"
	auditMFAVerifyFailed   = "MFA_VERIFICATION_FAILED"
	auditTokenRefreshed    = "TOKEN_REFRESHED"
	auditUserLogout        = "USER_LOGOUT"
	auditGlobalLogout      = "GLOBAL_LOGOUT_SUCCESS"
	auditGlobalLogoutFail  = "GLOBAL_LOGOUT_FAILED"
	auditResetRequested    = "PASSWORD_RESET_REQUESTED"
	auditResetFailed       = "PASSWORD_RESET_FAILED"
	auditResetCompleted    = "PASSWORD_RESET_COMPLETED"
	auditForgotChanged     = "PASSWORD_FORGOT_CHANGED"
	auditPasswordChanged   = "PASSWORD_CHANGED"
	auditUserCreated       = "USER_CREATED"
	auditUserSoftDeleted   = "USER_SOFT_DELETED"
)

// emitAudit builds and queues one audit record. The metadata builder runs
// only when auditing is enabled so hot paths pay nothing for disabled audit.
func (e *Engine) emitAudit(
	ctx context.Context,
	description string,
	activityType string,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["userAgent"] = ua
	}

	event := AuditEvent{
		Timestamp:    time.Now().UTC(),
		Description:  description,
		ActivityType: activityType,
		UserID:       userID,
		CreatedBy:    userID,
		IP:           clientIPFromContext(ctx),
		Status:       AuditSuccess,
		Metadata:     metadata,
	}
	if err != nil {
		event.Status = AuditFailed
		event.ErrorMessage = err.Error()
	}

	e.audit.Emit(ctx, event)
}
