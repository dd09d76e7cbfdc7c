package library

import (
	"github.com/gofiber/fiber/v2"
)

// AppControllers bundles everything RegisterRoutes needs.
type AppControllers struct {
	HTML  *HTMLController
	Admin *AdminController
	API   *APIController
	Gate  *AuthGate
}

// RegisterRoutes mounts both surfaces on the fiber app. Three routes
// are shared between them (login, registration and the author
// listing); those dispatch per request, JSON clients identified by
// their Authorization header, Content-Type or Accept header.
func RegisterRoutes(app *fiber.App, ctrls AppControllers) {
	html := ctrls.HTML
	admin := ctrls.Admin
	api := ctrls.API
	gate := ctrls.Gate

	// public pages
	app.Get("/", html.Home)
	app.Get("/login", html.LoginShow)
	app.Get("/register", html.RegisterShow)
	app.Get("/register-delete", html.RegisterDeleteShow)
	app.Post("/register-delete", html.RegisterDeletePost)
	app.Get("/get-books/:author?", html.GetBooks)
	app.Get("/logout", html.Logout)

	// the login form posts to /token; /login accepts the same payload
	app.Post("/login", html.TokenPost)

	// shared routes
	app.Post("/token", func(c *fiber.Ctx) error {
		if wantsJSON(c) {
			return api.Token(c)
		}
		return html.TokenPost(c)
	})

	app.Post("/register", func(c *fiber.Ctx) error {
		if wantsJSON(c) {
			return api.RegisterUser(c)
		}
		return html.RegisterPost(c)
	})

	app.Get("/books/:author", func(c *fiber.Ctx) error {
		if wantsJSON(c) {
			return api.ListBooks(c)
		}
		return html.BooksByAuthor(c)
	})

	// session-guarded pages
	app.Get("/menu/:author", gate.CookieAuth(), html.Menu)
	app.Get("/setting-user/:author", gate.CookieAuth(), html.SettingUser)
	app.Get("/change-name/:author", gate.CookieAuth(), html.ChangeNameShow)
	app.Post("/change-name/:author", gate.CookieAuth(), html.ChangeNamePost)
	app.Get("/data-user/:author", gate.CookieAuth(), html.DataUser)
	app.Get("/delete-register/:author", gate.CookieAuth(), html.DeleteRegisterShow)
	app.Post("/delete-register/:author", gate.CookieAuth(), html.DeleteRegisterPost)
	app.Get("/create-book/:author", gate.CookieAuth(), html.CreateBookShow)
	app.Post("/create-book/:author", gate.CookieAuth(), html.CreateBookPost)
	app.Get("/update-book/:author", gate.CookieAuth(), html.UpdateBookShow)
	app.Post("/update-book/:author", gate.CookieAuth(), html.UpdateBookPost)
	app.Get("/delete-book/:author", gate.CookieAuth(), html.DeleteBookShow)
	app.Post("/delete-book/:author", gate.CookieAuth(), html.DeleteBookPost)

	// admin pages
	app.Get("/admin-error", gate.CookieAuth(), admin.AccessError)
	app.Get("/admin", gate.CookieAuth(), gate.RequireAdmin(), admin.Panel)
	app.Get("/admin-create-book", gate.CookieAuth(), gate.RequireAdmin(), admin.CreateBookShow)
	app.Post("/admin-create-book", gate.CookieAuth(), gate.RequireAdmin(), admin.CreateBookPost)
	app.Get("/admin-update-book", gate.CookieAuth(), gate.RequireAdmin(), admin.UpdateBookShow)
	app.Post("/admin-update-book", gate.CookieAuth(), gate.RequireAdmin(), admin.UpdateBookPost)
	app.Get("/admin-delete-book", gate.CookieAuth(), gate.RequireAdmin(), admin.DeleteBookShow)
	app.Post("/admin-delete-book", gate.CookieAuth(), gate.RequireAdmin(), admin.DeleteBookPost)
	app.Get("/admin-register-delete", gate.CookieAuth(), gate.RequireAdmin(), admin.RegisterDeleteShow)
	app.Post("/admin-register-delete", gate.CookieAuth(), gate.RequireAdmin(), admin.RegisterDeletePost)

	// bearer-guarded API
	app.Post("/books", gate.BearerAuth(), api.CreateBook)
	app.Put("/books", gate.BearerAuth(), api.UpdateBook)
	app.Delete("/books", gate.BearerAuth(), api.DeleteBook)
	app.Delete("/register", api.DeleteUser)
}
