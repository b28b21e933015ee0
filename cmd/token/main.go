// token emite un JWT firmado con JWT_SECRET para llamar a la API cuando la autenticación está activa.
//
// Uso: go run ./cmd/token --user marie --role comptable
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/jhoicas/smartcompta/pkg/config"
	"github.com/jhoicas/smartcompta/pkg/jwt"
	"github.com/jhoicas/smartcompta/pkg/logger"
)

func main() {
	user := flag.String("user", "", "identificador del usuario (sub)")
	role := flag.String("role", jwt.RoleComptable, "rol: admin | comptable")
	minutes := flag.Int("minutes", 0, "validez en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	logger.NewWithWriter(logger.Config{Env: "development", Level: "info"}, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuración")
	}
	if !cfg.JWT.Enabled() {
		log.Fatal().Msg("JWT_SECRET vacío: la API no exige token")
	}
	if *user == "" {
		log.Fatal().Msg("--user requerido")
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleComptable {
		log.Fatal().Str("role", *role).Msg("rol desconocido")
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("firmar token")
	}
	fmt.Println(tok)
}
