package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/common"
	"folio/models"
)

type detectRequest struct {
	Text string `json:"text"`
}

type autoTranslateRequest struct {
	From        models.LanguageCode      `json:"from"`
	To          models.LanguageCode      `json:"to"`
	Translation *models.TranslationInput `json:"translation"`
}

func (m *Module) translationRoutes(g *gin.RouterGroup) {
	g.GET("/stats", m.translationStats)
	g.POST("/detect", m.detectLanguage)
	g.POST("/auto", m.autoTranslate)
	g.POST("/validate/:type", m.validateTranslation)

	g.GET("/:type/:id", m.translationStatus)
	g.POST("/:type/:id", m.createTranslations)
	g.DELETE("/:type/:id", m.deleteTranslations)
	g.GET("/:type/:id/:lang", m.getTranslation)
	g.POST("/:type/:id/:lang", m.createTranslation)
	g.PUT("/:type/:id/:lang", m.updateTranslation)
}

func contentType(c *gin.Context) (models.ContentType, bool) {
	ct, ok := models.ParseContentType(c.Param("type"))
	if !ok {
		common.Respond(c, 0, nil, common.Validation("Unknown content type", "type"))
	}
	return ct, ok
}

// pathLanguage takes the language from the URL as given; the service
// rejects unsupported codes.
func pathLanguage(c *gin.Context) models.LanguageCode {
	return models.LanguageCode(c.Param("lang"))
}

func translationFound(tr any, err error) error {
	if err == nil && tr == nil {
		return common.NotFound("Translation not found")
	}
	return err
}

func (m *Module) translationStats(c *gin.Context) {
	stats, err := m.Translations.Stats(c.Request.Context())
	common.Respond(c, http.StatusOK, stats, err)
}

func (m *Module) translationStatus(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	statuses, err := m.Translations.Status(c.Request.Context(), ct, c.Param("id"))
	common.Respond(c, http.StatusOK, statuses, err)
}

func (m *Module) getTranslation(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	tr, err := m.Translations.Get(c.Request.Context(), ct, c.Param("id"), pathLanguage(c))
	common.Respond(c, http.StatusOK, tr, translationFound(tr, err))
}

func (m *Module) createTranslation(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	in, ok := bind[models.TranslationInput](c)
	if !ok {
		return
	}
	tr, err := m.Translations.Create(c.Request.Context(), ct, c.Param("id"), pathLanguage(c), &in)
	common.RespondMessage(c, http.StatusCreated, tr, "Translation created", err)
}

func (m *Module) updateTranslation(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	in, ok := bind[models.TranslationInput](c)
	if !ok {
		return
	}
	tr, err := m.Translations.Update(c.Request.Context(), ct, c.Param("id"), pathLanguage(c), &in)
	common.RespondMessage(c, http.StatusOK, tr, "Translation updated", translationFound(tr, err))
}

// createTranslations takes a language to translation map. Languages fail
// independently; the response lists the outcome of each.
func (m *Module) createTranslations(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	in, ok := bind[map[models.LanguageCode]*models.TranslationInput](c)
	if !ok {
		return
	}
	results, err := m.Translations.CreateMultipleTranslations(c.Request.Context(), ct, c.Param("id"), in)
	common.Respond(c, http.StatusOK, results, err)
}

func (m *Module) deleteTranslations(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	n, err := m.Translations.Delete(c.Request.Context(), ct, c.Param("id"))
	common.RespondMessage(c, http.StatusOK, gin.H{"deleted": n}, "Translations deleted", err)
}

func (m *Module) validateTranslation(c *gin.Context) {
	ct, ok := contentType(c)
	if !ok {
		return
	}
	in, ok := bind[models.TranslationInput](c)
	if !ok {
		return
	}
	common.Respond(c, http.StatusOK, m.Translations.ValidateTranslationData(ct, &in), nil)
}

func (m *Module) detectLanguage(c *gin.Context) {
	req, ok := bind[detectRequest](c)
	if !ok {
		return
	}
	common.Respond(c, http.StatusOK, gin.H{"language": m.Translations.DetectLanguage(req.Text)}, nil)
}

func (m *Module) autoTranslate(c *gin.Context) {
	req, ok := bind[autoTranslateRequest](c)
	if !ok {
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		common.Respond(c, 0, nil, common.Validation("Unsupported language", "from", "to"))
		return
	}
	out, err := m.Translations.AutoTranslate(c.Request.Context(), req.Translation, req.From, req.To)
	common.Respond(c, http.StatusOK, out, err)
}
