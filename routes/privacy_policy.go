package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the privacy policy shown on the app's store
// listing.
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Field Mates Privacy Policy</title>
</head>
<body>
	<h1>Field Mates Privacy Policy</h1>
	<p>Field Mates stores the profile you create (name, username, email, and anything else you choose to add such as a picture or your city) so other players can find you and invite you to matches.</p>
	<p>Signing in uses Sign in with Apple. We only receive the identifier Apple assigns to you for this app and, if you share it, your email.</p>
	<p>Deleting your account removes your profile and picture.</p>
</body>
</html>
`
	fmt.Fprint(w, html)
}
