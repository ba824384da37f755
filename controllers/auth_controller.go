package controllers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

type RegisterReq struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.Role == "" {
		req.Role = models.RoleParticipant
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if !user.IsActive || !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

type GoogleLoginReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLoginHandler verifies a Google ID token and signs the user in,
// creating a participant account on first sight of the email.
func GoogleLoginHandler(c *gin.Context) {
	var req GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	payload, err := idtoken.Validate(c.Request.Context(), req.IDToken, clientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token has no email"})
		return
	}
	if name == "" {
		name = email
	}

	var user models.User
	err = config.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		user = models.User{
			Name:     name,
			Email:    email,
			Role:     models.RoleParticipant,
			IsActive: true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Account is deactivated"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

// Logout exists for API symmetry. Tokens are stateless; clients drop them.
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.CtxUserPublic)})
}

type UpdateProfileReq struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

func UpdateProfile(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid name"})
			return
		}
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Bio too long"})
			return
		}
		u.Bio = req.Bio
	}

	if err := config.DB.Save(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func ChangePassword(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if !utils.CheckPassword(u.PasswordHash, req.OldPassword) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Old password is incorrect"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}
	u.PasswordHash = hash

	if err := config.DB.Save(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// UploadAvatar stores a profile image and saves its public URL.
func UploadAvatar(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file received"})
		return
	}

	fileID := fmt.Sprintf("user_%d", u.ID)
	publicURL, err := utils.UploadAvatar(fileHeader, fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	u.AvatarURL = &publicURL
	if err := config.DB.Save(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": publicURL})
}

// GetUserByEmail looks a user up for cooperation invitations.
func GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email query param is required"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
