package tiles

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Barap1/UniExplorer/internal/bodies"
)

// Proxy serves raster tiles for the viewer, fetching them from the body's
// upstream tile service and caching them in Redis. The viewer has fixed
// global bounds with no horizontal wraparound, so out-of-range tile
// coordinates are client errors, not wrapped.
type Proxy struct {
	registry *bodies.Registry
	cache    *TileCache
	client   *http.Client

	// failed tracks which bodies already logged an upstream failure. One
	// log line per body until a tile for it succeeds again, not one per
	// broken tile request.
	mu     sync.Mutex
	failed map[string]bool
}

func NewProxy(registry *bodies.Registry, cache *TileCache, upstreamTimeout time.Duration) *Proxy {
	return &Proxy{
		registry: registry,
		cache:    cache,
		client:   &http.Client{Timeout: upstreamTimeout},
		failed:   make(map[string]bool),
	}
}

// Register attaches the tile route to the given router group.
func (p *Proxy) Register(rg *gin.RouterGroup) {
	rg.GET("/:body/:z/:x/:y", p.serve)
}

func (p *Proxy) serve(c *gin.Context) {
	body, err := p.registry.Get(c.Param("body"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown celestial body"})
		return
	}

	z, x, y, err := parseCoords(c.Param("z"), c.Param("x"), c.Param("y"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if z > body.MaxZoom {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": fmt.Sprintf("zoom exceeds maximum %d for %s", body.MaxZoom, body.Key)})
		return
	}

	max := 1 << uint(z)
	if x >= max || y >= max {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "tile coordinates out of range"})
		return
	}

	ctx := c.Request.Context()

	if data, err := p.cache.Get(ctx, body.Key, z, x, y); err == nil {
		c.Data(http.StatusOK, contentType(body.TileURL), data)
		return
	} else if !errors.Is(err, ErrTileNotCached) {
		log.Printf("[tiles] cache read failed: %v", err)
	}

	data, err := p.fetch(c, body, z, x, y)
	if err != nil {
		p.logOnce(body.Key, err)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "tile upstream unavailable"})
		return
	}
	p.clearFailure(body.Key)

	if err := p.cache.Set(ctx, body.Key, z, x, y, data); err != nil {
		log.Printf("[tiles] cache write failed: %v", err)
	}

	c.Data(http.StatusOK, contentType(body.TileURL), data)
}

func (p *Proxy) fetch(c *gin.Context, body bodies.Body, z, x, y int) ([]byte, error) {
	url := tileURL(body.TileURL, z, x, y)

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tile request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tile upstream returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile body: %w", err)
	}

	return data, nil
}

func (p *Proxy) logOnce(body string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failed[body] {
		return
	}
	p.failed[body] = true
	log.Printf("[tiles] upstream failure for %s: %v", body, err)
}

func (p *Proxy) clearFailure(body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, body)
}

func tileURL(template string, z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(template)
}

func parseCoords(zs, xs, ys string) (z, x, y int, err error) {
	z, err = strconv.Atoi(zs)
	if err != nil || z < 0 {
		return 0, 0, 0, errors.New("invalid zoom")
	}
	x, err = strconv.Atoi(xs)
	if err != nil || x < 0 {
		return 0, 0, 0, errors.New("invalid tile x")
	}
	y, err = strconv.Atoi(strings.TrimSuffix(strings.TrimSuffix(ys, ".png"), ".jpg"))
	if err != nil || y < 0 {
		return 0, 0, 0, errors.New("invalid tile y")
	}
	return z, x, y, nil
}

func contentType(template string) string {
	if strings.HasSuffix(template, ".jpg") || strings.HasSuffix(template, ".jpeg") {
		return "image/jpeg"
	}
	return "image/png"
}
