// Package notesdk is the Go client for the notes service.
//
// Client covers the unauthenticated surface (signup, login, health) and
// produces Sessions:
//
//	client := notesdk.NewClient("http://localhost:3000")
//	session, err := client.Login(ctx, "alice@example.com", "Password1")
//	if err != nil { ... }
//	note, err := session.CreateNote(ctx, "Groceries", "milk, eggs")
//
// Session transparently renews its short-lived access token. When a request
// is rejected with 401 or 403, the session performs one refresh exchange and
// retries the request once; concurrent rejections share a single exchange.
// When the refresh token itself is rejected the session returns
// ErrSessionExpired from then on and the user must log in again.
package notesdk
