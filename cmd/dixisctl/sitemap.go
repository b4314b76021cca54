package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg/sitemap"
	"github.com/dixis/dixis/repository"
)

var (
	sitemapBaseURL string
	sitemapOutDir  string
)

// Storefront areas crawlers should skip.
var robotsDisallow = []string{"/admin", "/api", "/cart", "/checkout", "/account"}

var staticPages = []sitemap.URL{
	{Loc: "/", ChangeFreq: "daily", Priority: 1.0},
	{Loc: "/products", ChangeFreq: "daily", Priority: 0.9},
	{Loc: "/producers", ChangeFreq: "weekly", Priority: 0.8},
	{Loc: "/adoptions", ChangeFreq: "weekly", Priority: 0.7},
	{Loc: "/about", ChangeFreq: "monthly", Priority: 0.5},
	{Loc: "/contact", ChangeFreq: "monthly", Priority: 0.5},
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Generate sitemap.xml and robots.txt",
	Long: `Build sitemap.xml from static pages, categories, active products and
verified producers, and write robots.txt next to it.

Example:
  dixisctl sitemap --base-url https://dixis.gr --out ./public`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sitemapBaseURL == "" {
			sitemapBaseURL = os.Getenv("APP_URL")
		}
		if sitemapBaseURL == "" {
			return fmt.Errorf("--base-url or APP_URL is required")
		}

		db, log, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		urls, err := collectSitemapURLs(ctx,
			repository.NewSQLiteCategoryRepo(db.Conn),
			repository.NewSQLiteCatalogRepo(db.Conn),
			repository.NewSQLiteProducerRepo(db.Conn),
			sitemapBaseURL,
		)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(sitemapOutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := writeFile(filepath.Join(sitemapOutDir, "sitemap.xml"), func(f *os.File) error {
			return sitemap.Write(f, urls)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(sitemapOutDir, "robots.txt"), func(f *os.File) error {
			return sitemap.WriteRobots(f, sitemapBaseURL, robotsDisallow)
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d urls to %s\n", len(urls), sitemapOutDir)
		return nil
	},
}

func init() {
	sitemapCmd.Flags().StringVar(&sitemapBaseURL, "base-url", "", "public site URL (default $APP_URL)")
	sitemapCmd.Flags().StringVar(&sitemapOutDir, "out", "./public", "output directory")
}

func collectSitemapURLs(
	ctx context.Context,
	categories repository.CategoryRepository,
	catalog repository.CatalogRepository,
	producers repository.ProducerRepository,
	baseURL string,
) ([]sitemap.URL, error) {
	urls := make([]sitemap.URL, 0, len(staticPages))
	for _, p := range staticPages {
		p.Loc = sitemap.Join(baseURL, p.Loc)
		urls = append(urls, p)
	}

	cats, err := categories.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for _, c := range cats {
		urls = append(urls, sitemap.URL{
			Loc:        sitemap.Join(baseURL, "/categories/"+c.Slug),
			LastMod:    c.UpdatedAt,
			ChangeFreq: "weekly",
			Priority:   0.7,
		})
	}

	products, err := catalog.ActiveProducts(ctx, models.CatalogQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for _, p := range products {
		urls = append(urls, sitemap.URL{
			Loc:        sitemap.Join(baseURL, "/products/"+p.Slug),
			LastMod:    p.UpdatedAt,
			ChangeFreq: "daily",
			Priority:   0.8,
		})
	}

	prods, err := producers.Verified(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list producers: %w", err)
	}
	for _, p := range prods {
		urls = append(urls, sitemap.URL{
			Loc:        sitemap.Join(baseURL, "/producers/"+strconv.FormatInt(p.ID, 10)),
			LastMod:    p.UpdatedAt,
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}
	return urls, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
