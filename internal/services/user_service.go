package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/apperrors"
	"taxiline/internal/models"
	"taxiline/internal/patch"
	"taxiline/internal/query"
	"taxiline/internal/repositories/interfaces"
	"taxiline/internal/utils"
	"taxiline/internal/validators"
	"taxiline/pkg/logger"
	"taxiline/pkg/sms"
	"taxiline/pkg/storage"
)

// Upload is one uploaded document from the driver registration form, keyed by
// its form field name.
type Upload struct {
	FieldKey     string
	OriginalName string
	TempPath     string
}

// AuthPayload is returned after create/confirm: a session token plus the
// public user projection.
type AuthPayload struct {
	Token string           `json:"token"`
	User  *models.UserInfo `json:"user"`
}

type UserService struct {
	users      interfaces.UserRepository
	smsClient  sms.Provider
	images     *storage.ImageStore
	jwtSecret  string
	codeLength int
	log        *logger.Logger
}

func NewUserService(
	users interfaces.UserRepository,
	smsClient sms.Provider,
	images *storage.ImageStore,
	jwtSecret string,
	codeLength int,
	log *logger.Logger,
) *UserService {
	return &UserService{
		users:      users,
		smsClient:  smsClient,
		images:     images,
		jwtSecret:  jwtSecret,
		codeLength: codeLength,
		log:        log,
	}
}

// Create registers a rider. The account starts inactive; an activation code
// goes out by SMS and a session token is issued right away.
func (s *UserService) Create(ctx context.Context, req *validators.UserCreateRequest) (*AuthPayload, error) {
	user, err := s.newUser(req, models.RoleRider, false)
	if err != nil {
		return nil, err
	}
	user.ActivationCode = utils.GenerateActivationCode(s.codeLength)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendActivationSMS(ctx, user); err != nil {
		return nil, err
	}

	return s.authPayload(user)
}

// CreateDriver registers a driver account, active immediately, and places the
// uploaded documents under deterministic names. A failed placement fails the
// whole registration; it is never swallowed.
func (s *UserService) CreateDriver(ctx context.Context, req *validators.UserCreateRequest, uploads []Upload) (*AuthPayload, error) {
	user, err := s.newUser(req, models.RoleDriver, true)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	for _, up := range uploads {
		if _, err := s.images.PlaceDocument(ctx, user.ID.Hex(), up.FieldKey, up.OriginalName, up.TempPath); err != nil {
			return nil, fmt.Errorf("failed to place driver document %s: %w", up.FieldKey, err)
		}
	}

	s.log.LogUserAction(user.ID, "driver_registered", map[string]interface{}{"documents": len(uploads)})

	return s.authPayload(user)
}

// CreateAdmin registers an admin account, active immediately.
func (s *UserService) CreateAdmin(ctx context.Context, req *validators.UserCreateRequest) (*AuthPayload, error) {
	user, err := s.newUser(req, models.RoleAdmin, true)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.authPayload(user)
}

// List runs the listing engine over users; secrets never leave the
// repository.
func (s *UserService) List(ctx context.Context, params *query.Params) (*query.Envelope, error) {
	users, count, err := s.users.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if users == nil {
		users = []*models.User{}
	}

	return &query.Envelope{
		Data:          users,
		NumberOfPages: query.NumberOfPages(count, params.Pagination.Number),
	}, nil
}

func (s *UserService) Show(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Me(ctx context.Context, id primitive.ObjectID) (*models.UserInfo, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Info(), nil
}

func (s *UserService) Destroy(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

func (s *UserService) ToggleActivation(ctx context.Context, id primitive.ObjectID) error {
	return s.users.ToggleActivation(ctx, id)
}

// Patch applies an ordered set of field edits, validates the patched entity
// and persists it. A failed patch leaves the stored record untouched.
func (s *UserService) Patch(ctx context.Context, id primitive.ObjectID, ops []patch.Operation) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Apply(ops, userPatchFields(user)); err != nil {
		return nil, err
	}

	if verrs := validators.ValidateUser(user); len(verrs) > 0 {
		return nil, apperrors.NewValidation(verrs.ToMap())
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password before anything changes; a
// mismatch denies the request without touching state.
func (s *UserService) ChangePassword(ctx context.Context, id primitive.ObjectID, req *validators.PasswordChangeRequest) error {
	if verrs := validators.ValidatePasswordChange(req); len(verrs) > 0 {
		return apperrors.NewValidation(verrs.ToMap())
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return apperrors.NewAuthorization("current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.Update(ctx, id, map[string]interface{}{"password": hash})
}

// Edit updates the self-service profile props. Empty request values keep the
// stored ones.
func (s *UserService) Edit(ctx context.Context, id primitive.ObjectID, req *validators.EditRequest) (*models.UserInfo, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.AccountNumber != "" {
		user.AccountNumber = req.AccountNumber
	}
	if req.DriverState != "" {
		user.DriverState = req.DriverState
	}
	if req.AppID != "" {
		user.AppID = req.AppID
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.LastState != "" {
		user.LastState = req.LastState
	}

	if verrs := validators.ValidateUser(user); len(verrs) > 0 {
		return nil, apperrors.NewValidation(verrs.ToMap())
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return user.Info(), nil
}

// GetActivationCode generates a fresh code, stores it and sends it by SMS.
func (s *UserService) GetActivationCode(ctx context.Context, id primitive.ObjectID) (string, error) {
	code := utils.GenerateActivationCode(s.codeLength)

	if err := s.users.Update(ctx, id, map[string]interface{}{"activation_code": code}); err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.sendActivationSMS(ctx, user); err != nil {
		return "", err
	}

	return code, nil
}

// Confirm activates the account when the submitted code matches and binds the
// device app id.
func (s *UserService) Confirm(ctx context.Context, id primitive.ObjectID, req *validators.ConfirmRequest) (*AuthPayload, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.ActivationCode != req.ActivationCode {
		return nil, apperrors.ErrActivationMismatch
	}

	user.Active = true
	user.AppID = req.AppID

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.authPayload(user)
}

func (s *UserService) newUser(req *validators.UserCreateRequest, role models.UserRole, active bool) (*models.User, error) {
	if verrs := validators.ValidateUserCreate(req); len(verrs) > 0 {
		return nil, apperrors.NewValidation(verrs.ToMap())
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Name:         req.Name,
		Mobile:       req.Mobile,
		NationalCode: req.NationalCode,
		Email:        req.Email,
		Password:     hash,
		Role:         role,
		Active:       active,
		Rate:         models.DefaultRate,
		Location:     req.Location,
	}, nil
}

func (s *UserService) authPayload(user *models.User) (*AuthPayload, error) {
	token, err := utils.GenerateToken(user.ID, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthPayload{
		Token: token,
		User:  user.Info(),
	}, nil
}

func (s *UserService) sendActivationSMS(ctx context.Context, user *models.User) error {
	if s.smsClient == nil {
		return nil
	}

	_, err := s.smsClient.Send(ctx, &sms.Request{
		To:      user.Mobile,
		Message: fmt.Sprintf("%s activation code: %s", utils.AppName, user.ActivationCode),
	})
	return err
}

// userPatchFields exposes the patchable user fields through typed accessors.
// Password changes go through ChangePassword; the identity field is stripped
// by the applier.
func userPatchFields(user *models.User) patch.Registry {
	role := (*string)(&user.Role)
	return patch.Registry{
		"name":           patch.String(&user.Name),
		"mobile":         patch.String(&user.Mobile),
		"national_code":  patch.String(&user.NationalCode),
		"email":          patch.String(&user.Email),
		"role":           patch.String(role),
		"active":         patch.Bool(&user.Active),
		"rate":           patch.Float64(&user.Rate),
		"account_number": patch.String(&user.AccountNumber),
		"driver_state":   patch.String(&user.DriverState),
		"app_id":         patch.String(&user.AppID),
		"last_state":     patch.String(&user.LastState),
	}
}
