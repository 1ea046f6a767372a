package main

import (
	"os"

	"github.com/adoptoposs/adoptoposs/internal/linguist"
	"github.com/alecthomas/kong"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Context struct {
	Debug  bool
	Logger *slog.Logger

	gorm.Config
	Dialector gorm.Dialector
}

// openDB opens the database and applies the driver's connection settings.
func (c *Context) openDB() (*gorm.DB, error) {
	db, err := gorm.Open(c.Dialector, &c.Config)
	if err != nil {
		return nil, err
	}
	if err := configureDB(db); err != nil {
		return nil, err
	}
	return db, nil
}

var cli struct {
	Debug bool   `help:"Enable debug mode." env:"ADOPTOPOSS_DEBUG"`
	DSN   string `help:"data source name" default:"adoptoposs:adoptoposs@tcp(localhost:3306)/adoptoposs" env:"ADOPTOPOSS_DSN"`

	AutoMigrate  AutoMigrateCmd  `cmd:"" help:"Automigrate the database."`
	CreateUser   CreateUserCmd   `cmd:"" help:"Create a new user."`
	Digest       DigestCmd       `cmd:"" help:"Collect digests for subscribed users."`
	HouseKeeping HouseKeepingCmd `cmd:"" help:"Prune old digests and unused topic tags."`
	ImportTags   ImportTagsCmd   `cmd:"" help:"Import language tags from GitHub Linguist."`
	Serve        ServeCmd        `cmd:"" help:"Serve a local web server."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("adoptoposs"),
		kong.Description("Find maintainers for your open source projects."),
		kong.Vars{"linguist_url": linguist.LanguagesURL},
	)

	level, dblevel := slog.LevelInfo, logger.Warn
	if cli.Debug {
		level, dblevel = slog.LevelDebug, logger.Info
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	err := ctx.Run(&Context{
		Debug:  cli.Debug,
		Logger: log,
		Config: gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(dblevel),
		},
		Dialector: newDialector(cli.DSN),
	})
	ctx.FatalIfErrorf(err)
}
