// Command create_admin bootstraps a staff account: an entry in the external
// authentication service plus the matching admin record. Reads its input
// from the environment so no credentials end up in shell history.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"library-loan-tracker/internal/firebase"
	"library-loan-tracker/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	name := os.Getenv("ADMIN_NAME")
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if name == "" || username == "" || email == "" || password == "" {
		log.Fatal("ADMIN_NAME, ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	ctx := context.Background()
	client, err := firebase.New(ctx)
	if err != nil {
		log.Fatalf("initializing Firebase: %v", err)
	}
	defer client.Close()

	if _, err := client.GetAdminByUsername(ctx, username); err == nil {
		log.Fatalf("admin %q already exists", username)
	}

	uid, err := client.CreateAuthUser(ctx, email, password, name)
	if err != nil {
		log.Fatalf("creating auth account: %v", err)
	}
	fmt.Printf("created auth account %s (uid %s)\n", email, uid)

	admin := &models.Admin{
		Name:      name,
		Username:  username,
		AuthUID:   uid,
		AuthEmail: email,
	}
	id, err := client.CreateAdmin(ctx, admin)
	if err != nil {
		// Leave no orphaned credential behind.
		if delErr := client.DeleteAuthUser(ctx, uid); delErr != nil {
			log.Printf("rollback of auth account failed: %v", delErr)
		}
		log.Fatalf("creating admin record: %v", err)
	}

	fmt.Printf("created admin record %s\n", id)
	fmt.Printf("username: %s\n", username)
	fmt.Println("the account can now sign in to the staff endpoints")
}
