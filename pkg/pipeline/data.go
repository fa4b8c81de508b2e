package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
	"github.com/matzehuels/gdpmap/pkg/httputil"
	"github.com/matzehuels/gdpmap/pkg/observability"
)

// Member name prefixes inside World Bank download archives.
const (
	indicatorPrefix = "API_"
	metadataPrefix  = "Metadata_Country_"
)

// maxMember caps an extracted archive member.
var maxMember int64 = 64 << 20

var zipMagic = []byte("PK\x03\x04")

// httpNamespace scopes downloaded files in the cache.
const httpNamespace = "worldbank"

// Dataset is the GDP tree of one year with the content hash of its inputs.
type Dataset struct {
	Year string
	Tree *hierarchy.Tree
	Hash string
}

// LoadData reads the configured sources and builds the tree for year.
// Datasets stay in memory; refresh reloads and re-downloads.
func (r *Runner) LoadData(ctx context.Context, year string, refresh bool) (ds *Dataset, hit bool, err error) {
	if year == "" {
		year = r.Config.Data.Year
	}
	r.mu.Lock()
	if ds, ok := r.datasets[year]; ok && !refresh {
		r.mu.Unlock()
		return ds, true, nil
	}
	r.mu.Unlock()

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, year)
	defer func() {
		nodes := 0
		if ds != nil {
			nodes = ds.Tree.Len()
		}
		observability.Pipeline().OnLoadComplete(ctx, year, nodes, time.Since(start), err)
	}()

	dc := r.Config.Data
	hit = true
	raw := make(map[string][]byte)
	read := func(src, prefix string) ([]byte, error) {
		data, ok := raw[src]
		if !ok {
			var sourceHit bool
			data, sourceHit, err = r.readSource(ctx, src, refresh)
			if err != nil {
				return nil, err
			}
			hit = hit && sourceHit
			raw[src] = data
		}
		return extract(data, prefix)
	}

	gdp, err := read(dc.GDP, indicatorPrefix)
	if err != nil {
		return nil, false, err
	}
	growth, err := read(dc.Growth, indicatorPrefix)
	if err != nil {
		return nil, false, err
	}
	meta, err := read(dc.Metadata, metadataPrefix)
	if err != nil {
		return nil, false, err
	}

	tree, err := hierarchy.LoadWorldBank(bytes.NewReader(gdp), bytes.NewReader(growth), bytes.NewReader(meta), year)
	if err != nil {
		return nil, false, err
	}
	ds = &Dataset{
		Year: year,
		Tree: tree,
		Hash: cache.Hash([]byte(year + "\x00" + cache.Hash(gdp) + cache.Hash(growth) + cache.Hash(meta))),
	}

	r.mu.Lock()
	r.datasets[year] = ds
	r.mu.Unlock()

	r.Logger.Info("loaded data",
		"year", year,
		"nodes", tree.Len(),
		"cached", hit,
		"duration", time.Since(start))
	return ds, hit, nil
}

// readSource returns the bytes of a URL or a local file. Downloads go
// through the cache; local files always count as hits.
func (r *Runner) readSource(ctx context.Context, src string, refresh bool) ([]byte, bool, error) {
	if !errors.IsURL(src) {
		data, err := readFile(src)
		return data, err == nil, err
	}

	cacheKey := r.Keyer.HTTPKey(httpNamespace, src)
	if data, hit := r.cached(ctx, cache.KeyTypeHTTP, cacheKey, refresh); hit {
		return data, true, nil
	}

	dc := r.Config.Data
	if dc.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dc.Timeout.Duration)
		defer cancel()
	}
	r.Logger.Debug("downloading", "url", src)
	data, err := httputil.Fetch(ctx, r.Client, src, httputil.WithBackoff(dc.Attempts, httputil.DefaultDelay))
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, cache.KeyTypeHTTP, cacheKey, data, cache.TTLHTTP)
	return data, false, nil
}

func readFile(path string) ([]byte, error) {
	if err := errors.ValidateSource(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "data file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "read data file %s", path)
	}
	return data, nil
}

// extract returns data unchanged unless it is a ZIP archive, in which case
// it returns the first CSV member whose base name starts with prefix.
func extract(data []byte, prefix string) ([]byte, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return data, nil
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open archive")
	}
	for _, f := range zr.File {
		name := path.Base(f.Name)
		if !strings.HasPrefix(name, prefix) || !strings.EqualFold(path.Ext(name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open archive member %s", f.Name)
		}
		defer rc.Close()
		out, err := io.ReadAll(io.LimitReader(rc, maxMember+1))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read archive member %s", f.Name)
		}
		if int64(len(out)) > maxMember {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"archive member %s exceeds %d bytes", f.Name, maxMember)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "archive has no %s*.csv member", prefix)
}
