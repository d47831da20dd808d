package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	drivenoauth "github.com/planroomhq/planroom-cli/internal/adapters/driven/oauth"
	"github.com/planroomhq/planroom-cli/internal/adapters/driven/ocr/vision"
	"github.com/planroomhq/planroom-cli/internal/adapters/driving/oauth"
)

// authTimeout bounds how long the flow waits for the browser redirect.
const authTimeout = 5 * time.Minute

var settingsOCRLoginCmd = &cobra.Command{
	Use:   "ocr-login",
	Short: "Authorize Cloud Vision OCR through the browser",
	Long: `Run the Google OAuth flow for the Cloud Vision OCR fallback and store
the resulting credentials. Needs an OAuth client of type 'Desktop app'
with the Vision API enabled on its project.

To enter an existing refresh token by hand use 'settings set-key'.`,
	Args: cobra.NoArgs,
	RunE: runSettingsOCRLogin,
}

func init() {
	settingsCmd.AddCommand(settingsOCRLoginCmd)
}

func runSettingsOCRLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Print("Enter OAuth client ID: ")
	clientID := readLine(reader)
	cmd.Print("Enter OAuth client secret: ")
	clientSecret := readPassword()
	cmd.Println()
	if clientID == "" || clientSecret == "" {
		return errors.New("client ID and client secret are required")
	}

	tokens, err := runOCRAuthFlow(cmd, clientID, clientSecret)
	if err != nil {
		return err
	}
	if tokens.RefreshToken == "" {
		return errors.New("no refresh token returned; revoke the app's access in your Google account and retry")
	}

	if err := settingsService.SetOCRCredentials(clientID, clientSecret, tokens.RefreshToken); err != nil {
		return fmt.Errorf("failed to save OCR credentials: %w", err)
	}

	cmd.Println("OCR credentials saved. OCR fallback enabled.")
	return nil
}

// runOCRAuthFlow sends the user through the browser authorization and
// exchanges the returned code for tokens.
func runOCRAuthFlow(cmd *cobra.Command, clientID, clientSecret string) (*drivenoauth.TokenResponse, error) {
	verifier := oauth.GenerateCodeVerifier()
	challenge := oauth.GenerateCodeChallenge(verifier)
	state := oauth.GenerateCodeVerifier()

	port, err := oauth.FindAvailablePort(18080, 18180)
	if err != nil {
		return nil, fmt.Errorf("no port available for the callback server: %w", err)
	}

	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck // best-effort shutdown on exit

	redirectURI := server.RedirectURI()
	authURL := vision.BuildAuthURL(clientID, redirectURI, state, challenge)

	cmd.Println()
	cmd.Println("Opening your browser for authorization. If nothing opens, visit:")
	cmd.Println()
	cmd.Println("  " + authURL)
	cmd.Println()
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open the browser: %v\n", err)
	}

	cmd.Println("Waiting for authorization...")
	code, err := server.WaitForCode(authTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	tokens, err := vision.ExchangeCode(cmd.Context(), clientID, clientSecret, code, redirectURI, verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for tokens: %w", err)
	}

	return tokens, nil
}
