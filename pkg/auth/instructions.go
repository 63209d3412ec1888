package auth

import (
	"fmt"
	"strings"
)

// ShowOAuthSetupGuide explains how to create the OAuth client that
// `auth login` asks for
func ShowOAuthSetupGuide() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("YOUTUBE OAUTH CLIENT SETUP")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
	fmt.Println("STEP 1: Open https://console.cloud.google.com and pick or create a project")
	fmt.Println("STEP 2: APIs & Services > Library > enable \"YouTube Data API v3\"")
	fmt.Println("STEP 3: APIs & Services > OAuth consent screen")
	fmt.Println("   - User type: External, add your own Google account as a test user")
	fmt.Printf("   - Scope: %s\n", oauthScope)
	fmt.Println("STEP 4: APIs & Services > Credentials > Create credentials > OAuth client ID")
	fmt.Println("   - Application type: Desktop app")
	fmt.Println("STEP 5: Copy the client ID and client secret into the prompts below")
	fmt.Println()
	fmt.Println("A browser window then asks you to sign in with the channel owner's")
	fmt.Println("account. The resulting refresh token is stored in your system keychain,")
	fmt.Println("or in an encrypted file when no keychain is available.")
	fmt.Println()
	fmt.Println("For CI, skip login and export instead:")
	fmt.Printf("   %s, %s, %s\n", EnvClientID, EnvClientSecret, EnvRefreshToken)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
}
