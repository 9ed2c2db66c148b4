package demostore

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"swagflow/internal/domain/swaglabs"
)

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

var prices = map[string]float64{
	swaglabs.Backpack:     29.99,
	swaglabs.BikeLight:    9.99,
	swaglabs.BoltTShirt:   15.99,
	swaglabs.FleeceJacket: 49.99,
	swaglabs.Onesie:       7.99,
	swaglabs.RedTShirt:    15.99,
}

func Products() []Product {
	names := swaglabs.Catalogue()
	products := make([]Product, 0, len(names))
	for i, name := range names {
		products = append(products, Product{
			ID:          i,
			Name:        name,
			Description: "A demo store item.",
			Price:       prices[name],
		})
	}
	return products
}

// Users accepted by the store, all with the shared password.
var users = map[string]bool{
	swaglabs.StandardUser:     true,
	swaglabs.LockedOutUser:    true,
	"problem_user":            true,
	"performance_glitch_user": true,
	"error_user":              true,
	"visual_user":             true,
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginError returns the banner text the store shows for a credential
// pair, or "" when the login succeeds.
func LoginError(username, password string) string {
	switch {
	case username == "":
		return swaglabs.ErrorPrefix + ": Username is required"
	case password == "":
		return swaglabs.ErrorPrefix + ": Password is required"
	case !users[username] || password != swaglabs.Password:
		return swaglabs.ErrorPrefix + ": Username and password do not match any user in this service"
	case username == swaglabs.LockedOutUser:
		return swaglabs.ErrorPrefix + ": Sorry, this user has been locked out."
	}
	return ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, loginResponse{Error: "malformed login request"})
		return
	}

	if msg := LoginError(req.Username, req.Password); msg != "" {
		s.log.Debug("login rejected", "username", req.Username, "reason", msg)
		respondJSON(w, http.StatusUnauthorized, loginResponse{Error: msg})
		return
	}

	if req.Username == "performance_glitch_user" && s.opts.GlitchDelay > 0 {
		select {
		case <-time.After(s.opts.GlitchDelay):
		case <-r.Context().Done():
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    req.Username,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug("login accepted", "username", req.Username)
	respondJSON(w, http.StatusOK, loginResponse{Redirect: swaglabs.InventoryPath})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Products())
}

// requireSession sends visitors without a session back to the login page
// with the store's access error.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || !users[c.Value] || c.Value == swaglabs.LockedOutUser {
			msg := swaglabs.ErrorPrefix + ": You can only access '" + r.URL.Path + "' when you are logged in."
			http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusFound)
			return
		}
		next(w, r)
	}
}

type pageData struct {
	Title        string
	Error        string
	Username     string
	Products     []Product
	RenderDelay  int64
	AlertOnLogin bool
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", pageData{
		Title: swaglabs.Title,
		Error: r.URL.Query().Get("error"),
	})
}

func (s *Server) handleInventoryPage(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie(sessionCookie)
	s.render(w, "inventory.html", pageData{
		Title:        swaglabs.Title,
		Username:     c.Value,
		Products:     Products(),
		RenderDelay:  s.opts.RenderDelay.Milliseconds(),
		AlertOnLogin: s.opts.AlertOnLogin,
	})
}

func (s *Server) handleCartPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "cart.html", pageData{Title: swaglabs.Title, Products: Products()})
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render page", "page", name, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
