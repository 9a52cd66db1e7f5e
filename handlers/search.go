package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"thorbis-backend/search"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SearchHandler struct {
	DB *gorm.DB
}

const (
	cacheControlFresh    = "public, max-age=180, stale-while-revalidate=360"
	cacheControlDegraded = "public, max-age=60"
)

// GetBusinesses is the main directory read. Invalid parameters fail fast with
// 400; everything past validation degrades instead of erroring, so the caller
// always gets a renderable list. The source tag in meta is the only signal of
// degradation.
func (h *SearchHandler) GetBusinesses(c *gin.Context) {
	started := time.Now()

	params, err := search.Parse(c.Request.URL.Query(), search.EndpointList)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	// Last-resort guard: a panic anywhere below still produces a usable
	// response rather than a 500. The recovered message rides along in meta
	// so an emergency response stays distinguishable from a plain fallback.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("search panic recovered: %v", r)
			h.respondDegraded(c, started, params, search.SourceEmergency, fmt.Sprintf("%v", r))
		}
	}()

	if h.DB == nil {
		h.respondDegraded(c, started, params, search.SourceFallback, "")
		return
	}

	caller := callerFrom(c)
	result, err := search.Execute(h.DB, params, caller, time.Now().UTC())
	if err != nil {
		log.Printf("search query failed: %v", err)
		h.respondDegraded(c, started, params, search.SourceFallback, err.Error())
		return
	}

	// An empty unfiltered directory means the data set itself is missing,
	// not that nothing matched; serve the fallback so the UI stays populated.
	if len(result.Businesses) == 0 && !params.HasFilters() {
		h.respondDegraded(c, started, params, search.SourceFallback, "")
		return
	}

	c.Header("Cache-Control", cacheControlFresh)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"businesses": result.Businesses,
			"facets":     result.Facets,
		},
		"meta": gin.H{
			"pagination":       result.Pagination,
			"performance":      result.Performance,
			"filters":          result.Filters,
			"source":           result.Source,
			"response_time_ms": time.Since(started).Milliseconds(),
		},
	})
}

func (h *SearchHandler) respondDegraded(c *gin.Context, started time.Time, params *search.Params, source, errMsg string) {
	result := search.FallbackResult(params, source)
	meta := gin.H{
		"pagination":       result.Pagination,
		"performance":      result.Performance,
		"filters":          result.Filters,
		"source":           result.Source,
		"response_time_ms": time.Since(started).Milliseconds(),
	}
	if errMsg != "" {
		meta["error"] = errMsg
	}
	c.Header("Cache-Control", cacheControlDegraded)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"businesses": result.Businesses,
			"facets":     result.Facets,
		},
		"meta": meta,
	})
}

type simpleSearchPayload struct {
	Query    string `json:"query" form:"query"`
	Location string `json:"location" form:"location"`
	Category string `json:"category" form:"category"`
	Limit    int    `json:"limit" form:"limit"`
	Offset   int    `json:"offset" form:"offset"`
}

// SimpleSearch is the lightweight flat-shape search used by embeds and older
// clients. Accepts GET query params or a POST JSON body, and answers from the
// fixed mock set when no database is wired.
func (h *SearchHandler) SimpleSearch(c *gin.Context) {
	started := time.Now()

	var req simpleSearchPayload
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid search payload")
			return
		}
	} else {
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeValidation, "Invalid search parameters")
			return
		}
	}

	if req.Limit <= 0 {
		req.Limit = search.DefaultLimit
	}
	if req.Limit > search.MaxLimit {
		req.Limit = search.MaxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	if h.DB == nil {
		h.respondSimpleMock(c, started, &req, search.SourceMock)
		return
	}

	params := &search.Params{
		Query:       req.Query,
		Location:    req.Location,
		Open:        "any",
		Sort:        "relevance",
		Page:        req.Offset/req.Limit + 1,
		Limit:       req.Limit,
		Include:     map[string]bool{"categories": true},
		ReviewsSort: "newest",
	}
	if req.Category != "" {
		params.Categories = []string{req.Category}
	}

	result, err := search.Execute(h.DB, params, callerFrom(c), time.Now().UTC())
	if err != nil {
		log.Printf("simple search query failed: %v", err)
		h.respondSimpleMock(c, started, &req, search.SourceFallback)
		return
	}

	c.Header("Cache-Control", cacheControlFresh)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"businesses": result.Businesses,
		"metadata": gin.H{
			"total":            result.Pagination.Total,
			"returned":         len(result.Businesses),
			"offset":           req.Offset,
			"limit":            req.Limit,
			"response_time_ms": time.Since(started).Milliseconds(),
			"query":            req.Query,
			"location":         req.Location,
			"category":         req.Category,
			"source":           result.Source,
		},
	})
}

func (h *SearchHandler) respondSimpleMock(c *gin.Context, started time.Time, req *simpleSearchPayload, source string) {
	dataset := search.FallbackDataset()

	matched := make([]search.BusinessView, 0, len(dataset))
	q := strings.ToLower(req.Query)
	loc := strings.ToLower(req.Location)
	for _, b := range dataset {
		if q != "" && !strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(b.City), loc) &&
			!strings.Contains(strings.ToLower(b.State), loc) {
			continue
		}
		if req.Category != "" && !hasCategorySlug(b, req.Category) {
			continue
		}
		matched = append(matched, b)
	}

	total := len(matched)
	start := req.Offset
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	page := matched[start:end]

	c.Header("Cache-Control", cacheControlDegraded)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"businesses": page,
		"metadata": gin.H{
			"total":            total,
			"returned":         len(page),
			"offset":           req.Offset,
			"limit":            req.Limit,
			"response_time_ms": time.Since(started).Milliseconds(),
			"query":            req.Query,
			"location":         req.Location,
			"category":         req.Category,
			"source":           source,
		},
	})
}

func hasCategorySlug(b search.BusinessView, slug string) bool {
	for _, cat := range b.Categories {
		if strings.EqualFold(cat.Slug, slug) {
			return true
		}
	}
	return false
}
