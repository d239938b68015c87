package tools

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Sessions stores the bearer token used for backend calls
type Sessions interface {
	Login(ctx context.Context, token string) error
}

type LoginParams struct {
	Token string `json:"token" jsonschema:"Bearer token issued by the recruitment backend"`
}

// WithLoginTool registers login, which stores a token obtained out of band
func WithLoginTool(sessions Sessions) Option {
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "login",
			Description: "Store the bearer token used for recruitment backend calls",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params LoginParams) (*sdkmcp.CallToolResult, any, error) {
			ctx, c := reg.begin(ctx, "login")
			if params.Token == "" {
				return c.fail(errors.New("token is required")), nil, nil
			}
			if err := sessions.Login(ctx, params.Token); err != nil {
				return c.fail(err), nil, nil
			}
			return c.ok("token stored"), nil, nil
		})
	}
}
