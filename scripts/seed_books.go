// Seeds the catalog with a starter set of books. Run once against a fresh
// project: go run scripts/seed_books.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"library-loan-tracker/internal/firebase"
	"library-loan-tracker/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	ctx := context.Background()
	client, err := firebase.New(ctx)
	if err != nil {
		log.Fatalf("initializing Firebase: %v", err)
	}
	defer client.Close()

	log.Println("seeding catalog...")

	books := []models.Book{
		{
			Title:       "Laskar Pelangi",
			Author:      "Andrea Hirata",
			Publisher:   ptr("Bentang Pustaka"),
			PublishDate: date(2005, time.September, 1),
		},
		{
			Title:       "Bumi Manusia",
			Author:      "Pramoedya Ananta Toer",
			Publisher:   ptr("Hasta Mitra"),
			PublishDate: date(1980, time.August, 1),
		},
		{
			Title:       "Ronggeng Dukuh Paruk",
			Author:      "Ahmad Tohari",
			Publisher:   ptr("Gramedia Pustaka Utama"),
			PublishDate: date(1982, time.January, 1),
		},
		{
			Title:       "Negeri 5 Menara",
			Author:      "Ahmad Fuadi",
			Publisher:   ptr("Gramedia Pustaka Utama"),
			PublishDate: date(2009, time.July, 1),
		},
		{
			Title:  "Cantik Itu Luka",
			Author: "Eka Kurniawan",
			// publisher and publish date unknown; stored as nulls
		},
		{
			Title:       "Perahu Kertas",
			Author:      "Dee Lestari",
			Publisher:   ptr("Bentang Pustaka"),
			PublishDate: date(2009, time.August, 1),
		},
	}

	for i := range books {
		id, err := client.CreateBook(ctx, &books[i])
		if err != nil {
			log.Fatalf("seeding %q: %v", books[i].Title, err)
		}
		log.Printf("created %q (%s)", books[i].Title, id)
	}

	log.Printf("done, %d books seeded", len(books))
}

func ptr(s string) *string { return &s }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
