package main

import (
	"github.com/adoptoposs/adoptoposs/models"
)

type CreateUserCmd struct {
	Username string `required:"" help:"username at the provider"`
	Name     string `help:"display name"`
	Email    string `help:"email address"`
	Provider string `default:"github" help:"repository provider the user signs in with"`
	Token    string `required:"" env:"ADOPTOPOSS_PROVIDER_TOKEN" help:"access token for the provider API"`
}

func (c *CreateUserCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	user, err := models.NewUsers(db).Create(models.UserAttrs{
		Name:          c.Name,
		Username:      c.Username,
		Email:         c.Email,
		Provider:      c.Provider,
		ProviderToken: c.Token,
	})
	if err != nil {
		return err
	}
	ctx.Logger.Info("created user", "id", user.ID, "username", user.Username)
	return nil
}
