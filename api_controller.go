package library

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// APIController serves the JSON surface. Errors always come back in
// the same envelope: {"error": {"message": ..., "text_code": ...}}.
type APIController struct {
	repo          RepositoryManager
	auth          Authenticator
	register      *RegisterUserHandler
	deleteAccount *DeleteAccountHandler
	logger        Logger
}

func NewAPIController(repo RepositoryManager, auth Authenticator) *APIController {
	return &APIController{
		repo:          repo,
		auth:          auth,
		register:      NewRegisterUserHandler(repo),
		deleteAccount: NewDeleteAccountHandler(repo),
		logger:        defLogger{},
	}
}

func (ctrl *APIController) WithLogger(logger Logger) *APIController {
	ctrl.logger = logger
	return ctrl
}

// Token exchanges credentials for a bearer token. Unlike the HTML
// form, no author label is involved.
func (ctrl *APIController) Token(c *fiber.Ctx) error {
	payload := LoginForm{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	username := strings.TrimSpace(payload.Username)

	token, err := ctrl.auth.Login(c.UserContext(), username, payload.Password)
	if err != nil {
		ctrl.logger.Debug("api login rejected", "username", username, "error", err)
		return writeError(c, ErrInvalidCredentials)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// BookPayload is the JSON body for the book write endpoints.
type BookPayload struct {
	Author string `json:"author" form:"author"`
	Title  string `json:"title" form:"title"`
	Pages  int    `json:"pages" form:"pages"`
}

// Validate will run validation rules
func (r BookPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Author, validation.Required, validation.Length(3, 30)),
			validation.Field(&r.Title, validation.Required),
			validation.Field(&r.Pages, validation.Required, validation.Min(11)),
		)
	}, "Invalid book payload, pages must be greater than 10")
}

// CreateBook adds a book under any author.
func (ctrl *APIController) CreateBook(c *fiber.Ctx) error {
	payload := BookPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	created, err := ctrl.repo.Books().CreateBook(c.UserContext(), &Book{
		Title:  payload.Title,
		Author: payload.Author,
		Pages:  payload.Pages,
	})

	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "book created",
		"book":    created,
	})
}

// UpdateBook locates the book by its (title, author) pair and rewrites
// the page count.
func (ctrl *APIController) UpdateBook(c *fiber.Ctx) error {
	payload := BookPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	book, err := ctrl.repo.Books().GetByTitleAuthor(c.UserContext(), payload.Title, payload.Author)
	if err != nil {
		return writeError(c, err)
	}

	book.Pages = payload.Pages

	updated, err := ctrl.repo.Books().UpdateBook(c.UserContext(), book)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "book updated",
		"book":    updated,
	})
}

// BookDeletePayload names the book to remove.
type BookDeletePayload struct {
	Author string `json:"author" form:"author"`
	Title  string `json:"title" form:"title"`
}

// Validate will run validation rules
func (r BookDeletePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Author, validation.Required),
			validation.Field(&r.Title, validation.Required),
		)
	}, "Invalid book payload")
}

// DeleteBook removes the named book.
func (ctrl *APIController) DeleteBook(c *fiber.Ctx) error {
	payload := BookDeletePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	if err := ctrl.repo.Books().DeleteByTitleAuthor(c.UserContext(), payload.Title, payload.Author); err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "book deleted",
	})
}

// ListBooks returns an author's shelf as JSON. An author with no books
// is a 404, not an empty list.
func (ctrl *APIController) ListBooks(c *fiber.Ctx) error {
	author, _ := url.PathUnescape(c.Params("author"))

	records, err := ctrl.repo.Books().ListByAuthor(c.UserContext(), author)
	if err != nil {
		return writeError(c, err)
	}

	if len(records) == 0 {
		return writeError(c, errors.New("no books found for author", errors.CategoryNotFound).
			WithTextCode("BOOKS_NOT_FOUND").
			WithMetadata(map[string]any{"author": author}))
	}

	return c.JSON(fiber.Map{
		"author": author,
		"books":  records,
	})
}

// RegisterUser creates an account over JSON.
func (ctrl *APIController) RegisterUser(c *fiber.Ctx) error {
	payload := RegisterForm{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	created, err := ctrl.register.Execute(c.UserContext(), RegisterUserMessage{
		Author:       payload.Author,
		Username:     payload.Username,
		Password:     payload.Password,
		ClientID:     payload.ClientID,
		ClientSecret: payload.ClientSecret,
	})

	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "account created",
		"username": created.Username,
		"author":   created.Author,
	})
}

// DeleteUser removes an account after verifying its password.
func (ctrl *APIController) DeleteUser(c *fiber.Ctx) error {
	payload := DeleteAccountForm{}
	if err := c.BodyParser(&payload); err != nil {
		return writeError(c, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithTextCode(TextCodeValidationFailed))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, err)
	}

	err := ctrl.deleteAccount.Execute(c.UserContext(), DeleteAccountMessage{
		Username: strings.TrimSpace(payload.Username),
		Password: payload.Password,
	})

	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "account deleted",
	})
}
