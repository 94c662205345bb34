package user

import (
	"errors"
	"net/http"
	"user_auth_service/internal/auth"
	"user_auth_service/internal/observability"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	service UserServiceInterface
	codec   *auth.TokenCodec
}

func NewUserController(service UserServiceInterface, codec *auth.TokenCodec) *UserController {
	return &UserController{
		service: service,
		codec:   codec,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayname"`
	Password    string `json:"password"`
	Admin       bool   `json:"admin"`
}

// Authenticate verifies the submitted credentials and issues a token.
// Failed authentication is a structured non-success response, not an HTTP
// error status; that is the wire contract of this service.
func (u *UserController) Authenticate(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	account, err := u.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			observability.IncAuthAttempt("user_not_found")
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Authentication failed. User not found."})
		case errors.Is(err, ErrWrongPassword):
			observability.IncAuthAttempt("wrong_password")
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Authentication failed. Wrong password."})
		default:
			observability.IncAuthAttempt("error")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Authentication failed. Please try again."})
		}
		return
	}

	token, err := u.codec.Issue(account.Username, account.DisplayName, account.Admin)
	if err != nil {
		observability.IncAuthAttempt("error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	observability.IncAuthAttempt("success")
	observability.IncTokenIssued()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Store and use this token for all requests",
		"token":   token,
	})
}

// ListUsers returns every record in the store.
func (u *UserController) ListUsers(c *gin.Context) {
	users, err := u.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to list users"})
		return
	}

	if users == nil {
		users = []*User{}
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser inserts a new record with the four supplied fields.
func (u *UserController) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := u.service.CreateUser(c.Request.Context(), req.Username, req.DisplayName, req.Password, req.Admin); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User saved successfully"})
}

// GetUserByUsername returns all records matching the username, as a collection.
func (u *UserController) GetUserByUsername(c *gin.Context) {
	users, err := u.service.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to get user"})
		return
	}

	if users == nil {
		users = []*User{}
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser replaces the record matched by the path key with the supplied
// fields, inserting a new record when no match exists.
func (u *UserController) UpdateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := u.service.UpdateUser(c.Request.Context(), c.Param("username"), req.Username, req.DisplayName, req.Password, req.Admin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully"})
}

// DeleteUserByUsername removes the matching record. Reports success even when
// no record matched.
func (u *UserController) DeleteUserByUsername(c *gin.Context) {
	if err := u.service.DeleteUserByUsername(c.Request.Context(), c.Param("username")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

// Check returns the decoded token claims attached by the auth middleware,
// verbatim and unfiltered.
func (u *UserController) Check(c *gin.Context) {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read claims"})
		return
	}

	c.JSON(http.StatusOK, claims)
}
