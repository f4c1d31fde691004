package fetch

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/indexing"
	"github.com/swagindex/mcp-server/internal/specdoc"
)

// SwaggerFileName is the document name inside every variant directory.
const SwaggerFileName = "swagger.yaml"

// VariantResult reports one processed variant.
type VariantResult struct {
	Variant string
	Added   int // records this variant contributed
	Total   int // map size after this variant
	Skipped bool
}

// Result summarizes a pipeline run.
type Result struct {
	Version    string
	Variants   []VariantResult
	Records    int
	Duplicates int
	MapPath    string
}

// Progress receives one line per pipeline step. Nil discards.
type Progress func(format string, args ...any)

// Pipeline downloads documents for one source, writes a line index next to
// each and keeps the merged endpoint map up to date.
type Pipeline struct {
	Client         *Client
	Release        config.ReleaseConfig
	Dir            string // source directory under the work dir
	Service        string
	DefaultVariant string
	Diags          *diag.List
	Progress       Progress
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Progress != nil {
		p.Progress(format, args...)
	}
}

// RunVariants fetches every variant of the latest release. Release and
// variant discovery failures abort the run; a variant whose document is
// missing or unreadable is skipped with a warning. The map is rewritten after
// every variant.
func (p *Pipeline) RunVariants(ctx context.Context) (*Result, error) {
	version, err := p.Client.LatestRelease(ctx, p.Release.Repo, p.Release.TagPrefix, p.Release.PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to discover release of %s: %w", p.Release.Repo, err)
	}
	p.logf("Discovered latest release of %s: %s", p.Release.Repo, version)

	variants, err := p.Client.ListVariants(ctx, Expand(p.Release.VariantsURL, version, ""), p.DefaultVariant)
	if err != nil {
		if IsNotFound(err) {
			return nil, diag.Missing(fmt.Sprintf("swagger folder for version %s", version), err)
		}
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	p.logf("Found %d swagger variants", len(variants))

	res := &Result{Version: version, MapPath: filepath.Join(p.Dir, endpoint.MapFileName)}
	merger := endpoint.NewMerger()
	total := len(variants)

	for i, variant := range variants {
		step := fmt.Sprintf("[%d/%d]", i+1, total)
		rel := path.Join(variant, SwaggerFileName)
		dest := filepath.Join(p.Dir, variant, SwaggerFileName)

		if err := p.Client.Download(ctx, Expand(p.Release.SwaggerURL, version, variant), dest); err != nil {
			p.Diags.Add(diag.KindFetchFailure, variant, "%v, skipping", err)
			res.Variants = append(res.Variants, VariantResult{Variant: variant, Total: len(merger.Records()), Skipped: true})
			continue
		}

		records, err := p.index(dest, rel, variant)
		if err != nil {
			p.Diags.AddError(err)
			res.Variants = append(res.Variants, VariantResult{Variant: variant, Total: len(merger.Records()), Skipped: true})
			continue
		}

		added := merger.Add(records)
		if err := endpoint.SaveMap(res.MapPath, merger.Records()); err != nil {
			return nil, err
		}
		res.Variants = append(res.Variants, VariantResult{Variant: variant, Added: added, Total: len(merger.Records())})
		p.logf("%s Indexing %s: %d new endpoints (%d total)", step, variant, added, len(merger.Records()))
	}

	res.Records = len(merger.Records())
	for _, n := range merger.Duplicates {
		res.Duplicates += n
	}
	if res.Duplicates > 0 {
		p.Diags.Add(diag.KindDuplicate, p.Service, "%d records already owned by an earlier variant were discarded", res.Duplicates)
	}
	return res, nil
}

// RunSingle fetches the one document of a service with no variants. Every
// failure except a document without endpoints aborts the run.
func (p *Pipeline) RunSingle(ctx context.Context) (*Result, error) {
	version, err := p.Client.LatestRelease(ctx, p.Release.Repo, p.Release.TagPrefix, p.Release.PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to discover release of %s: %w", p.Release.Repo, err)
	}
	p.logf("Discovered latest release of %s: %s", p.Release.Repo, version)

	dest := filepath.Join(p.Dir, SwaggerFileName)
	if err := p.Client.Download(ctx, Expand(p.Release.SwaggerURL, version, ""), dest); err != nil {
		if IsNotFound(err) {
			return nil, diag.Missing(fmt.Sprintf("%s for version %s", SwaggerFileName, version), err)
		}
		return nil, fmt.Errorf("failed to download %s: %w", SwaggerFileName, err)
	}

	records, err := p.index(dest, SwaggerFileName, "")
	if err != nil {
		if !specdoc.IsNoPaths(err) {
			return nil, err
		}
		p.Diags.AddError(err)
		records = nil
	}

	res := &Result{
		Version:  version,
		Records:  len(records),
		MapPath:  filepath.Join(p.Dir, endpoint.MapFileName),
		Variants: []VariantResult{{Added: len(records), Total: len(records)}},
	}
	if err := endpoint.SaveMap(res.MapPath, records); err != nil {
		return nil, err
	}
	p.logf("Indexed %d endpoints", len(records))
	return res, nil
}

// index opens a downloaded document, writes its line index and returns its
// records.
func (p *Pipeline) index(file, rel, variant string) ([]*endpoint.Record, error) {
	src, err := specdoc.Open(file)
	if err != nil {
		return nil, err
	}
	entries := src.Entries()
	header := src.Header(p.Service, path.Join(p.Service, rel), len(entries))
	indexPath := filepath.Join(filepath.Dir(file), indexing.IndexFileName)
	if err := indexing.WriteIndexFile(indexPath, header, entries); err != nil {
		return nil, err
	}
	return endpoint.FromSource(src, rel, variant), nil
}
