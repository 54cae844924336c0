/*
Package authsdk provides a client SDK for the backrose authentication service.

# Overview

The service keeps its session in cookies: an HttpOnly access token, an
HttpOnly refresh token and a readable csrftoken. The SDK mirrors what a
browser does with them. It provides unauthenticated operations via SDKClient
and cookie-backed operations via Session.

	client := authsdk.NewSDKClient("https://api.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Create an account (does not log in)
	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Email:     "gardener@example.com",
		Username:  "gardener",
		Password:  "Tea-Rose-Hybrid-42",
		Password2: "Tea-Rose-Hybrid-42",
	})

	// Log in to create a session
	session, err := client.Login(ctx, "gardener@example.com", "Tea-Rose-Hybrid-42")

# Sessions

Each Session has its own cookie jar. Unsafe requests carry the X-CSRFToken
header copied from the csrftoken cookie. When the service answers 401
"Token expired" the Session refreshes once and retries:

	user, err := session.GetUser(ctx)

	header := "Мой розарий"
	user, err = session.UpdateProfile(ctx, authsdk.UpdateProfileRequest{AppHeader: &header})

	user, err = session.UploadProfileImage(ctx, "me.png", file)

	err = session.Logout(ctx)

# Errors

Every non-2xx response is an *APIError. Detail holds {"detail": "..."}
bodies; Fields holds per-field validation messages:

	_, err := client.Register(ctx, req)
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.Field("email"))
	}
*/
package authsdk
