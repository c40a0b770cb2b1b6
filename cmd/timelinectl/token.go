package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"example.com/timeline/internal/bootstrap"
	"example.com/timeline/internal/tokenstore"
)

func newTokenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored upstream token.",
	}
	cmd.AddCommand(newTokenImportCmd(c))
	return cmd
}

func newTokenImportCmd(c *cli) *cobra.Command {
	var (
		file        string
		accessToken string
		expiresIn   time.Duration
		account     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store an upstream OAuth token for the API and CLI to use.",
		Long: `Store an upstream OAuth token in the configured token store.

The token is read from --file (a JSON document with access_token, refresh_token and
expires_at) or given directly with --access-token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := readToken(file, accessToken)
			if err != nil {
				return err
			}
			if expiresIn > 0 {
				token.ExpiresAt = c.now().Add(expiresIn)
			}
			if account == "" {
				account = c.cfg.TokenAccount
			}

			ctx := cmd.Context()
			store, closeStore, err := bootstrap.OpenTokenStore(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Save(ctx, account, token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			c.logger.Info().Str("account", account).Str("store", c.cfg.TokenStore).Msg("token imported")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Token stored for %s\n", account)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding the token")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access token value")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "token lifetime from now, overrides expires_at")
	cmd.Flags().StringVar(&account, "account", "", "account the token belongs to (defaults to TIMELINE_TOKEN_ACCOUNT)")
	cmd.MarkFlagsMutuallyExclusive("file", "access-token")
	return cmd
}

func readToken(file, accessToken string) (tokenstore.Token, error) {
	switch {
	case accessToken != "":
		return tokenstore.Token{AccessToken: accessToken}, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return tokenstore.Token{}, fmt.Errorf("read token file: %w", err)
		}
		var token tokenstore.Token
		if err := json.Unmarshal(data, &token); err != nil {
			return tokenstore.Token{}, fmt.Errorf("decode token file: %w", err)
		}
		return token, token.Validate()
	default:
		return tokenstore.Token{}, errors.New("one of --file or --access-token is required")
	}
}
