package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/ethics/patch-finder/crawler"
	"github.com/ethics/patch-finder/utils"
)

var (
	vulnID       = flag.String("vuln", "", "vulnerability identifier to locate patches for (e.g. CVE-2020-1234, DSA-4321-1, RHSA:2019-1234)")
	packagesFile = flag.String("packages", "", "optional YAML file mapping provider name to package name")
	outputDir    = flag.String("dir", utils.OutputDir(), "directory crawled sources are saved under")
	overwrite    = flag.Bool("overwrite", false, "overwrite previously saved sources")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()

	id := utils.TrimSpaceNewline(*vulnID)
	if id == "" {
		flag.Usage()
		return xerrors.New("-vuln is required")
	}

	packages, err := loadPackages(*packagesFile)
	if err != nil {
		return xerrors.Errorf("failed to load packages file: %w", err)
	}

	fetcher := crawler.NewFetcher()
	dispatcher := crawler.NewCrawlDispatcher(
		utils.NewFs(afero.NewOsFs()),
		*outputDir,
		crawler.WithOverwrite(*overwrite),
		crawler.WithDispatchAPIKey(utils.LookupEnv("NVD_API_KEY", "")),
	)

	ctx := crawler.NewContext(id, packages)
	if err := ctx.Run(fetcher, dispatcher); err != nil {
		return err
	}

	if err := utils.SetLastCrawledDate(*outputDir, id, time.Now().UTC()); err != nil {
		return xerrors.Errorf("failed to record crawl time: %w", err)
	}

	log.Printf("done: %d sources dispatched for %s", len(ctx.Runnable()), id)
	return nil
}

func loadPackages(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	packages := map[string]string{}
	if err = yaml.Unmarshal(b, &packages); err != nil {
		return nil, xerrors.Errorf("failed to parse %s: %w", path, err)
	}
	return packages, nil
}
