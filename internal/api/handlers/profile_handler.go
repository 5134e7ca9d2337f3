package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/storage"
	"github.com/halcyonchat/halcyon/internal/utils"
)

const maxAvatarSize = 5 << 20

type ProfileHandler struct {
	users    services.UserService
	uploader storage.Uploader
}

func NewProfileHandler(users services.UserService, uploader storage.Uploader) *ProfileHandler {
	return &ProfileHandler{users: users, uploader: uploader}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, u)
}

type UpdateProfileRequest struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	AvatarURL   string           `json:"avatarUrl"`
	Preferences *json.RawMessage `json:"preferences,omitempty"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}

	var prefs []byte
	if req.Preferences != nil {
		prefs = *req.Preferences
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), userID, req.Name, req.Email, req.AvatarURL, prefs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": gin.H{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"avatarUrl": u.AvatarURL,
		},
	})
}

// UploadAvatar stores a cropped avatar image and returns its public URL;
// the client follows up with an Update carrying that URL.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if h.uploader == nil {
		writeError(c, utils.E(utils.CodeUnavailable, "ProfileHandler.UploadAvatar", "file storage is not configured", nil))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UploadAvatar", "missing multipart field 'file'", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UploadAvatar", "only .jpg and .png are allowed", nil))
		return
	}
	if fh.Size <= 0 || fh.Size > maxAvatarSize {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UploadAvatar", "file too large (max 5MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "ProfileHandler.UploadAvatar", "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (first 512 bytes)
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	ct := http.DetectContentType(head)
	if ct != "image/jpeg" && ct != "image/png" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UploadAvatar", "invalid content type (must be jpeg or png)", nil))
		return
	}

	// re-compose stream: head + remaining file
	r := io.MultiReader(bytes.NewReader(head), file)

	objectName := "avatars/" + userID + "/" + uuid.NewString() + ext

	url, err := h.uploader.Upload(c.Request.Context(), objectName, ct, r)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "ProfileHandler.UploadAvatar", "failed to store avatar", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
