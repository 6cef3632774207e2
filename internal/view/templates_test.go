package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/almacen-console/almacen-console/testing"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{
		Title:     "Iniciar sesión",
		CSRFToken: "tok",
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `name="csrf_token" value="tok"`)
	assert.Contains(t, body, "Iniciar sesión")
}

func TestRenderHomeShowsRoleGatedNav(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/home.html", TemplateData{
		Title: "Inicio",
		Role:  "VENTAS",
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/ventas"`)
	assert.NotContains(t, body, `href="/compras"`)
	assert.NotContains(t, body, `href="/usuarios"`)
}
