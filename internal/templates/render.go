package templates

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"coffeeslides/internal/charts"
)

var (
	lineNumberRe   = regexp.MustCompile(`:(\d+):`)
	templateCallRe = regexp.MustCompile(`\{\{\s*template\s+"([^"]+)"`)
)

// Renderer handles template rendering
type Renderer struct {
	mu        sync.RWMutex
	templates *template.Template
	debug     bool
	baseDir   string
	log       *zap.SugaredLogger
}

// New creates a new template renderer
func New(templateDir string, debug bool) (*Renderer, error) {
	r := &Renderer{
		debug:   debug,
		baseDir: templateDir,
		log:     zap.S().Named("templates"),
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":  charts.FormatMoney,
		"formatNumber": formatNumber,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"seq":          seq,
		"json":         jsonMarshal,
		"lower":        strings.ToLower,
		"safeHTML":     func(s string) template.HTML { return template.HTML(s) },
	}
}

// loadTemplates parses every layout, page and partial, reporting all
// errors at once
func (r *Renderer) loadTemplates() error {
	tmpl := template.New("").Funcs(funcMap())

	var templateFiles []string
	for _, subdir := range []string{"layouts", "pages", "partials"} {
		subPattern := filepath.Join(r.baseDir, subdir, "*.html")
		matches, err := filepath.Glob(subPattern)
		if err != nil {
			return fmt.Errorf("error globbing %s: %w", subPattern, err)
		}
		templateFiles = append(templateFiles, matches...)
	}

	if len(templateFiles) == 0 {
		return fmt.Errorf("no template files found in %s", r.baseDir)
	}

	var parseErrors []string
	for _, file := range templateFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: failed to read: %v", file, err))
			continue
		}

		if _, err := tmpl.New(filepath.Base(file)).Parse(string(content)); err != nil {
			parseErrors = append(parseErrors, formatTemplateError(file, string(content), err))
		}
	}

	if len(parseErrors) > 0 {
		for _, e := range parseErrors {
			r.log.Error(e)
		}
		return fmt.Errorf("template parsing failed with %d error(s)", len(parseErrors))
	}

	if err := r.validateTemplateReferences(tmpl, templateFiles); err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()
	r.log.Infof("Templates loaded successfully: %d files", len(templateFiles))
	return nil
}

// formatTemplateError formats a template error with the offending line
func formatTemplateError(file, content string, err error) string {
	errStr := err.Error()
	lineNum := extractLineNumber(errStr)
	if lineNum <= 0 {
		return fmt.Sprintf("%s: %s", file, errStr)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d: %s\n", file, lineNum, errStr)
	lines := strings.Split(content, "\n")
	start := lineNum - 3
	if start < 0 {
		start = 0
	}
	end := lineNum + 2
	if end > len(lines) {
		end = len(lines)
	}
	for i := start; i < end; i++ {
		marker := "   "
		if i+1 == lineNum {
			marker = ">>>"
		}
		fmt.Fprintf(&sb, "  %s %4d | %s\n", marker, i+1, lines[i])
	}
	return sb.String()
}

// extractLineNumber tries to extract a line number from a template error
func extractLineNumber(errStr string) int {
	matches := lineNumberRe.FindStringSubmatch(errStr)
	if len(matches) >= 2 {
		var lineNum int
		fmt.Sscanf(matches[1], "%d", &lineNum)
		return lineNum
	}
	return 0
}

// validateTemplateReferences checks that all {{template "name"}} calls reference defined templates
func (r *Renderer) validateTemplateReferences(tmpl *template.Template, files []string) error {
	defined := make(map[string]bool)
	for _, t := range tmpl.Templates() {
		if t.Name() != "" {
			defined[t.Name()] = true
		}
	}

	var refErrors []string
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(strings.NewReader(string(content)))
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			for _, match := range templateCallRe.FindAllStringSubmatch(line, -1) {
				if !defined[match[1]] {
					refErrors = append(refErrors, fmt.Sprintf("%s:%d: undefined template %q", file, lineNum, match[1]))
				}
			}
		}
	}

	if len(refErrors) > 0 {
		for _, e := range refErrors {
			r.log.Error(e)
		}
		return fmt.Errorf("found %d undefined template reference(s)", len(refErrors))
	}

	return nil
}

// Reload reloads templates (useful for development)
func (r *Renderer) Reload() error {
	return r.loadTemplates()
}

func (r *Renderer) current() *template.Template {
	if r.debug {
		if err := r.loadTemplates(); err != nil {
			r.log.Errorf("Error reloading templates: %v", err)
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates
}

// Render renders a full page
func (r *Renderer) Render(w http.ResponseWriter, name string, data interface{}) error {
	return r.execute(w, name, data)
}

// RenderPartial renders a partial template (no base layout)
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) error {
	return r.execute(w, name, data)
}

func (r *Renderer) execute(w http.ResponseWriter, name string, data interface{}) error {
	tmpl := r.current()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		r.log.Errorf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	return nil
}

// RenderToString renders a template to a string
func (r *Renderer) RenderToString(name string, data interface{}) (string, error) {
	var buf strings.Builder
	if err := r.current().ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExecuteTemplate executes a template to a writer
func (r *Renderer) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	return r.current().ExecuteTemplate(w, name, data)
}

// Template functions

func formatNumber(v int) string {
	return message.NewPrinter(language.English).Sprintf("%d", v)
}

// seq generates a sequence of integers
func seq(start, end int) []int {
	if end < start {
		return nil
	}
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

func jsonMarshal(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}
