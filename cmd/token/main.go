// Comando token emite um JWT de desenvolvimento para chamar as rotas de escrita.
//
//	go run ./cmd/token -sub loja-centro -role manager
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"furnistock/internal/domain"
	"furnistock/internal/pkg/token"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "dev", "subject (caller id)")
	role := flag.String("role", string(domain.RoleCustomer), "customer | manager")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET_KEY"), "HS256 key (default: JWT_SECRET_KEY)")
	flag.Parse()

	if !domain.Role(*role).Valid() {
		log.Fatalf("❌ papel inválido %q", *role)
	}

	if *secret == "" {
		log.Fatal("❌ JWT_SECRET_KEY deve ser definida")
	}

	signed, err := token.NewService(*secret, *ttl).GenerateToken(*subject, *role)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println(signed)
}
