package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiline/internal/apperrors"
	"taxiline/internal/patch"
	"taxiline/internal/services"
	"taxiline/internal/utils"
	"taxiline/internal/validators"
	"taxiline/pkg/logger"
)

type UserHandler struct {
	users *services.UserService
	log   *logger.Logger
}

func NewUserHandler(users *services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log,
	}
}

// Index lists users through the listing engine.
// restriction: admin
func (h *UserHandler) Index(c *gin.Context) {
	result, err := h.users.List(c.Request.Context(), parseListingParams(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create registers a rider account.
func (h *UserHandler) Create(c *gin.Context) {
	var req validators.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	payload, err := h.users.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// CreateDriver registers a driver account with its document uploads.
func (h *UserHandler) CreateDriver(c *gin.Context) {
	var req validators.UserCreateRequest
	req.Name = c.PostForm("name")
	req.Mobile = c.PostForm("mobile")
	req.NationalCode = c.PostForm("national_code")
	req.Email = c.PostForm("email")
	req.Password = c.PostForm("password")

	uploads, err := h.collectUploads(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	payload, err := h.users.CreateDriver(c.Request.Context(), &req, uploads)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// CreateAdmin registers an admin account.
// restriction: admin
func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var req validators.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	payload, err := h.users.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// Show returns a single user.
func (h *UserHandler) Show(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	user, err := h.users.Show(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Patch applies field-level edits to a user.
func (h *UserHandler) Patch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	var ops []patch.Operation
	if err := c.ShouldBindJSON(&ops); err != nil {
		utils.BadRequestResponse(c, "Invalid patch document")
		return
	}

	user, err := h.users.Patch(c.Request.Context(), id, ops)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Destroy deletes a user.
// restriction: admin
func (h *UserHandler) Destroy(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := h.users.Destroy(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	utils.NoContentResponse(c)
}

// ToggleActivation flips a user's active flag.
// restriction: admin
func (h *UserHandler) ToggleActivation(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := h.users.ToggleActivation(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	utils.NoContentResponse(c)
}

// ChangePassword verifies the current password before changing it.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req validators.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	utils.NoContentResponse(c)
}

// Edit updates the caller's own profile props.
func (h *UserHandler) Edit(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req validators.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	info, err := h.users.Edit(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetActivationCode sends a fresh activation code to the caller.
func (h *UserHandler) GetActivationCode(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	code, err := h.users.GetActivationCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activationCode": code})
}

// Confirm activates the caller's account with the submitted code.
func (h *UserHandler) Confirm(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req validators.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	payload, err := h.users.Confirm(c.Request.Context(), userID, &req)
	if err != nil {
		if err == apperrors.ErrActivationMismatch {
			c.Status(http.StatusBadRequest)
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// Me returns the caller's own record.
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	info, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// collectUploads stashes the multipart files into temp copies the service can
// relocate.
func (h *UserHandler) collectUploads(c *gin.Context) ([]services.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var uploads []services.Upload
	for fieldKey, files := range form.File {
		if len(files) == 0 {
			continue
		}
		file := files[0]

		tempPath := filepath.Join(os.TempDir(), filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, tempPath); err != nil {
			return nil, err
		}

		uploads = append(uploads, services.Upload{
			FieldKey:     fieldKey,
			OriginalName: file.Filename,
			TempPath:     tempPath,
		})
	}

	return uploads, nil
}
