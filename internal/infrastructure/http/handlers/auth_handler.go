package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	signUp         *account.SignUp
	signIn         *account.SignIn
	signOut        *account.SignOut
	forgotPassword *account.ForgotPassword
	resetPassword  *account.ResetPassword
	enqueuer       ports.TaskEnqueuer
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewAuthHandler(signUp *account.SignUp, signIn *account.SignIn, signOut *account.SignOut, forgotPassword *account.ForgotPassword,
	resetPassword *account.ResetPassword, enqueuer ports.TaskEnqueuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		signUp:         signUp,
		signIn:         signIn,
		signOut:        signOut,
		forgotPassword: forgotPassword,
		resetPassword:  resetPassword,
		enqueuer:       enqueuer,
		validate:       validator.New(),
		log:            log,
	}
}

type credentialsBody struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func sessionResponse(s *account.Session) map[string]interface{} {
	return map[string]interface{}{
		"access_token": s.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   s.ExpiresIn,
		"user": map[string]interface{}{
			"id":    s.UserID.String(),
			"email": s.Email,
		},
		"profile": toProfileDTO(s.Profile),
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	email, password := SanitizeEmail(body.Email), SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}
	s, err := h.signUp.Execute(r.Context(), account.SignUpInput{Email: email, Password: password})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "user.signup", "", false, err.Error())
		middleware.RecordAuthAttempt("signup", false)
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "user.signup", s.UserID.String(), true, "")
	middleware.RecordAuthAttempt("signup", true)
	writeJSON(w, http.StatusCreated, sessionResponse(s))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	email, password := SanitizeEmail(body.Email), SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}
	s, err := h.signIn.Execute(r.Context(), account.SignInInput{Email: email, Password: password})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "user.login", s.UserID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, sessionResponse(s))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.signOut.Execute(r.Context(), claims); err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	AuditLog(h.log, r, "user.logout", claims.UserID, true, "")
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword always answers 202 so the response does not reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email" validate:"required,email,max=254"`
	}
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	h.forgotPassword.Execute(r.Context(), SanitizeEmail(body.Email))
	AuditLog(h.log, r, "password.forgot", "", true, "")
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "if the email is registered, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token" validate:"required,max=256"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
	}
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	err := h.resetPassword.Execute(r.Context(), account.ResetPasswordInput{Token: body.Token, NewPassword: SanitizePassword(body.NewPassword)})
	if err != nil {
		AuditLog(h.log, r, "password.reset", "", false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditLog(h.log, r, "password.reset", "", true, "")
	w.WriteHeader(http.StatusNoContent)
}
