package api

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "paper_summaries_go_backend/internal/errors"
	"paper_summaries_go_backend/internal/export"
	"paper_summaries_go_backend/internal/models"
	"paper_summaries_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func listPapersHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := intQuery(c, "page")
		if err != nil {
			apperrors.HandleError(c, apperrors.NewInvalidInputError("Error fetching papers", err))
			return
		}
		limit, err := intQuery(c, "limit")
		if err != nil {
			apperrors.HandleError(c, apperrors.NewInvalidInputError("Error fetching papers", err))
			return
		}

		result, err := paperService.ListPapers(c.Request.Context(), models.PaperQuery{
			Search:   c.Query("search"),
			Category: models.Category(c.Query("category")),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getPaperHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paper, err := paperService.GetPaper(c.Request.Context(), c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, paper)
	}
}

func createPaperHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var candidate models.Paper
		if err := c.ShouldBindJSON(&candidate); err != nil {
			apperrors.HandleError(c, apperrors.NewInvalidInputError("Error creating paper", err))
			return
		}

		paper, err := paperService.CreatePaper(c.Request.Context(), candidate)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusCreated, paper)
	}
}

func updatePaperHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.PaperPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			apperrors.HandleError(c, apperrors.NewInvalidInputError("Error updating paper", err))
			return
		}

		paper, err := paperService.UpdatePaper(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, paper)
	}
}

func deletePaperHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := paperService.DeletePaper(c.Request.Context(), c.Param("id")); err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Paper deleted successfully"})
	}
}

func paperBibTeXHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paper, err := paperService.GetPaper(c.Request.Context(), c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.bib"`, export.CiteKey(paper)))
		c.Data(http.StatusOK, "text/x-bibtex; charset=utf-8", []byte(export.BibTeX(paper)))
	}
}

func paperPDFHandler(paperService *services.PaperService) gin.HandlerFunc {
	return func(c *gin.Context) {
		paper, err := paperService.GetPaper(c.Request.Context(), c.Param("id"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		content, err := export.SummaryCardPDF(paper)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnavailableError("Error rendering paper", err))
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, export.CiteKey(paper)))
		c.Data(http.StatusOK, "application/pdf", content)
	}
}

// intQuery returns 0 when the parameter is absent.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", name, raw)
	}
	if value < 1 {
		return 0, fmt.Errorf("%s must be 1 or greater (got %d)", name, value)
	}
	return value, nil
}
