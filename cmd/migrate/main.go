// Package main provides a database migration runner for the battle report schema.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/redarchon/internal/config"
	"github.com/cory-johannsen/redarchon/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "migrations", "directory of migration files")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	sub := v.Sub("database")
	if sub == nil {
		log.Fatalf("config %q has no database section", *configPath)
	}
	var dbCfg config.DatabaseConfig
	if err := sub.Unmarshal(&dbCfg); err != nil {
		log.Fatalf("parsing database config: %v", err)
	}

	res, err := postgres.Migrate(dbCfg.DSN(), *dir, *direction, *steps)
	if err != nil {
		log.Fatalf("%v", err)
	}

	elapsed := time.Since(start)
	if res.NoChange {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", res.Version, res.Dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, res.Version, res.Dirty, elapsed)
	}
}
