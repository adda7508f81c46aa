package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"handbookbot-backend/models"
	"handbookbot-backend/repository"
	"handbookbot-backend/storage"

	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", ".", "directory containing .txt/.md regulation files")
	key := flag.String("key", "", "slot key (defaults to REGULATIONS_KEY or arena-regulations)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	if *key == "" {
		*key = os.Getenv("REGULATIONS_KEY")
	}

	batch, err := readBatch(*dir)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *dir, err)
	}
	if len(batch) == 0 {
		log.Printf("No .txt or .md files found in %s", *dir)
		return
	}

	ctx := context.Background()

	blobStore, err := storage.NewStorageFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close(blobStore)

	repo := repository.NewRegulationRepository(blobStore, *key)
	existing := repo.Load(ctx)

	stored, ignored := repo.Add(ctx, batch)

	fmt.Print(summary(len(existing), stored, ignored))
}

// summary reports what an import stored and skipped. before is the store size prior to the import.
func summary(before int, stored []models.RegulationDocument, ignored []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Imported %d regulation(s), skipped %d duplicate(s); store had %d, now %d\n",
		len(stored), len(ignored), before, before+len(stored))
	for _, doc := range stored {
		fmt.Fprintf(&b, "   + %s (%s)\n", doc.Name, doc.ID)
	}
	for _, name := range ignored {
		fmt.Fprintf(&b, "   = %s skipped, name already exists\n", name)
	}
	return b.String()
}

func readBatch(dir string) ([]models.UploadedRegulation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	batch := make([]models.UploadedRegulation, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if !utf8.Valid(data) {
			log.Printf("Warning: Skipping %s, not valid UTF-8", name)
			continue
		}
		batch = append(batch, models.UploadedRegulation{Name: name, Content: string(data)})
	}

	return batch, nil
}
