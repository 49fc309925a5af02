package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/domeo/doors/internal/domain"
	"github.com/domeo/doors/internal/usecase"
)

type Server struct {
	mux       *http.ServeMux
	quotes    *usecase.QuoteUC
	catalog   *usecase.CatalogUC
	exports   *usecase.ExportUC
	importer  *usecase.ImportUC
	customers domain.CustomerRepo
	oauthCfg  *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte

	// последний отчёт импорта прайс-листа (в памяти)
	lastImport *usecase.ImportReport
}

func New(q *usecase.QuoteUC, c *usecase.CatalogUC, e *usecase.ExportUC, imp *usecase.ImportUC, customers domain.CustomerRepo, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		quotes: q, catalog: c, exports: e, importer: imp,
		customers: customers, oauthCfg: oauthCfg,
		mux: http.NewServeMux(),
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		RateLimit(60),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/catalog/doors/options", s.apiCatalogOptions)

	s.mux.HandleFunc("/api/quotes", s.apiQuotes)
	s.mux.HandleFunc("/api/quotes/", s.apiQuoteByID)

	s.mux.HandleFunc("/api/export/order", s.apiExportOrder)
	s.mux.HandleFunc("/api/cart/export/doors/factory/xlsx", s.apiCartExportFactory)

	s.mux.HandleFunc("/admin/import/doors", s.handleAdminImportDoors)
	s.mux.HandleFunc("/admin/import/report", s.handleAdminImportReport)
	s.mux.HandleFunc("/admin/export/catalog", s.handleAdminExportCatalog)

	s.mux.HandleFunc("/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/logout", s.handleLogout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"ok": true})
}

func (s *Server) apiCatalogOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q := r.URL.Query()
	f := domain.OptionsFilter{
		Style:  q.Get("style"),
		Model:  q.Get("model"),
		Finish: q.Get("finish"),
		Color:  q.Get("color"),
		Type:   q.Get("type"),
	}
	if v := q.Get("width"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Width = &n
		}
	}
	if v := q.Get("height"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Height = &n
		}
	}

	d, err := s.catalog.Options(r.Context(), f)
	if err != nil {
		s.writeInternal(w, err, "catalog options")
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "domain": d})
}

func (s *Server) apiQuotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var q domain.Quote
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeJSON(w, 400, map[string]any{"success": false, "error": "некорректный JSON"})
			return
		}
		if err := s.quotes.Create(r.Context(), &q); err != nil {
			writeJSON(w, 400, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, 201, q)
	case http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		status := domain.QuoteStatus(r.URL.Query().Get("status"))
		list, total, err := s.quotes.List(r.Context(), status, page, 20)
		if err != nil {
			s.writeInternal(w, err, "list quotes")
			return
		}
		writeJSON(w, 200, map[string]any{"items": list, "total": total})
	default:
		http.Error(w, "method", 405)
	}
}

// apiQuoteByID serves GET /api/quotes/{id} and POST /api/quotes/{id}/status.
func (s *Server) apiQuoteByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/quotes/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeJSON(w, 400, map[string]any{"success": false, "error": "некорректный ID КП"})
		return
	}

	if len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost {
		var req struct {
			Status domain.QuoteStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			writeJSON(w, 400, map[string]any{"success": false, "error": "status обязателен"})
			return
		}
		if err := s.quotes.ChangeStatus(r.Context(), id, req.Status); err != nil {
			code := 400
			if errors.Is(err, domain.ErrNotFound) {
				code = 404
			}
			writeJSON(w, code, map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, 200, map[string]any{"success": true})
		return
	}

	if len(parts) != 1 || r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, 404, map[string]any{"success": false, "error": "КП не найден"})
			return
		}
		s.writeInternal(w, err, "get quote")
		return
	}
	writeJSON(w, 200, q)
}

func (s *Server) apiExportOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeExportError(w, &usecase.ExportError{Code: "INVALID_PAYLOAD", Message: "Тело запроса должно быть объектом"})
		return
	}

	req, eerr := usecase.ParseExportRequest(payload)
	if eerr != nil {
		s.writeExportError(w, eerr)
		return
	}

	file, err := s.exports.ExportOrder(r.Context(), *req)
	if err != nil {
		var ee *usecase.ExportError
		if errors.As(err, &ee) {
			s.writeExportError(w, ee)
			return
		}
		s.writeInternal(w, err, "export order")
		return
	}

	s.writeFile(w, file.MIME, file.Filename, file.Data)
}

func (s *Server) apiCartExportFactory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}

	var payload struct {
		Cart struct {
			Items []domain.Position `json:"items"`
		} `json:"cart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, 400, map[string]any{"success": false, "error": "некорректный JSON"})
		return
	}

	file, err := s.exports.ExportFactoryFromCart(r.Context(), payload.Cart.Items)
	if err != nil {
		var ee *usecase.ExportError
		if errors.As(err, &ee) {
			s.writeExportError(w, ee)
			return
		}
		s.writeInternal(w, err, "export factory cart")
		return
	}

	s.writeFile(w, file.MIME, file.Filename, file.Data)
}

func (s *Server) handleAdminImportDoors(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, 400, map[string]any{"success": false, "error": "multipart form required"})
		return
	}
	fh, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, 400, map[string]any{"success": false, "error": "file required"})
		return
	}
	defer fh.Close()
	data, err := io.ReadAll(fh)
	if err != nil {
		s.writeInternal(w, err, "read upload")
		return
	}

	report, err := s.importer.ImportDoors(r.Context(), data)
	if err != nil {
		var conflicts *usecase.ErrImportConflicts
		if errors.As(err, &conflicts) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write(conflicts.CSV())
			return
		}
		writeJSON(w, 400, map[string]any{"success": false, "error": err.Error()})
		return
	}

	s.lastImport = report
	writeJSON(w, 200, map[string]any{"ok": true, "report": report})
}

func (s *Server) handleAdminImportReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if s.lastImport == nil {
		writeJSON(w, 404, map[string]any{"success": false, "error": "импортов ещё не было"})
		return
	}
	writeJSON(w, 200, s.lastImport)
}

func (s *Server) handleAdminExportCatalog(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=doors_catalog.csv")
	fmt.Fprintln(w, "model,style,finish,color,type,width,height,rrc_price,price_opt,sku_1c,supplier,collection,supplier_item_name,supplier_color_finish")
	page := 1
	for {
		list, total, err := s.catalog.ListDoors(r.Context(), page, 200)
		if err != nil || len(list) == 0 {
			break
		}
		for _, p := range list {
			opt := ""
			if p.PriceOpt != nil {
				opt = fmt.Sprintf("%.2f", *p.PriceOpt)
			}
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%d,%d,%.2f,%s,%s,%s,%s,%q,%q\n",
				p.Model, p.Style, p.Finish, p.Color, p.Type, p.WidthMM, p.HeightMM,
				p.RRCPrice, opt, p.SKU1C, p.Supplier, p.Collection,
				p.SupplierItemName, p.SupplierColorFinish)
		}
		if page*200 >= int(total) {
			break
		}
		page++
	}
}

func (s *Server) writeFile(w http.ResponseWriter, mime, filename string, data []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) writeExportError(w http.ResponseWriter, e *usecase.ExportError) {
	writeJSON(w, 400, map[string]any{"success": false, "error": e.Message, "details": e})
}

// writeInternal hides unexpected error details in production.
func (s *Server) writeInternal(w http.ResponseWriter, err error, op string) {
	log.Error().Err(err).Str("op", op).Msg("internal error")
	msg := "internal error"
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env != "production" && env != "prod" {
		msg = err.Error()
	}
	writeJSON(w, 500, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// --- admin auth ---

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		tok := strings.TrimSpace(auth[7:])
		if _, err := s.verifyAdminToken(tok); err == nil {
			return true
		}
	}
	if c, err := r.Cookie("admin_token"); err == nil && c.Value != "" {
		if _, err := s.verifyAdminToken(c.Value); err == nil {
			return true
		}
	}
	http.Error(w, "unauthorized", 401)
	return false
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	cfgKey := os.Getenv("ADMIN_API_KEY")
	if cfgKey == "" {
		log.Error().Msg("ADMIN_API_KEY не задан")
		http.Error(w, "config", 500)
		return
	}
	apiKey := r.Header.Get("X-Admin-Key")
	if apiKey == "" || !secureCompare(apiKey, cfgKey) {
		http.Error(w, "unauthorized", 401)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.adminAllowed) == 1 {
		for k := range s.adminAllowed {
			email = k
		}
	}
	if _, ok := s.adminAllowed[email]; !ok {
		http.Error(w, "forbidden", 403)
		return
	}
	tok, exp, err := s.issueAdminToken(email, 30*time.Minute)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"token": tok, "exp": exp.Unix(), "email": email})
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	head := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	exp := time.Now().Add(dur)
	claims := map[string]any{"sub": email, "email": email, "role": "admin", "exp": exp.Unix(), "iat": time.Now().Unix(), "iss": "doors"}
	b, _ := json.Marshal(claims)
	pay := base64.RawURLEncoding.EncodeToString(b)
	unsigned := head + "." + pay
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return unsigned + "." + sig, exp, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("формат")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("sig")
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	if !hmac.Equal(sig, h.Sum(nil)) {
		return "", fmt.Errorf("подпись")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("payload")
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", fmt.Errorf("json")
	}
	role, _ := m["role"].(string)
	email, _ := m["email"].(string)
	expF, _ := m["exp"].(float64)
	if role != "admin" || email == "" {
		return "", fmt.Errorf("claims")
	}
	if time.Now().Unix() > int64(expF) {
		return "", fmt.Errorf("exp")
	}
	if _, ok := s.adminAllowed[strings.ToLower(email)]; !ok {
		return "", fmt.Errorf("not allowed")
	}
	return email, nil
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// --- Google OAuth session ---

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func secretKey() []byte {
	k := os.Getenv("SECRET_KEY")
	if k == "" {
		k = "dev"
	}
	return []byte(k)
}

func writeUserSession(w http.ResponseWriter, u *sessionUser) {
	if u == nil {
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode})
		return
	}
	b, _ := json.Marshal(u)
	h := hmac.New(sha256.New, secretKey())
	h.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: "sess", Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth не настроен", 500)
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), 302)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth не настроен", 500)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		http.Error(w, "state", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("exchange oauth")
		http.Error(w, "oauth", 400)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil || resp.StatusCode != 200 {
		log.Error().Err(err).Msg("userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(body, &info)
	if info.Email == "" {
		http.Error(w, "email", 400)
		return
	}
	if s.customers != nil {
		if _, err := s.customers.FindByEmail(r.Context(), info.Email); errors.Is(err, domain.ErrNotFound) {
			_ = s.customers.Save(r.Context(), &domain.Customer{ID: uuid.New(), Email: info.Email, Name: info.Name})
		}
	}
	writeUserSession(w, &sessionUser{Email: info.Email, Name: info.Name})
	http.Redirect(w, r, "/", 302)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeUserSession(w, nil)
	http.Redirect(w, r, "/", 302)
}
