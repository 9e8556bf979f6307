package baselinker

import (
	"regexp"
	"strconv"
	"strings"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

// Порядок важен: длинные префиксы проверяются раньше коротких,
// иначе "OGK" распадётся на "O" + мусор.
var edgeTokens = []string{"Druk-U3", "OGK", "U3", "U4", "U5", "O1", "O3", "O5", "LA"}

var (
	reRect        = regexp.MustCompile(`(\d+)x(\d+)`)
	reOval        = regexp.MustCompile(`(\d+)v(\d+)`)
	reRound       = regexp.MustCompile(`o(\d+)`)
	reRoundSuffix = regexp.MustCompile(`(\d+)o`)
	reDims        = regexp.MustCompile(`(?i)\d+[xv]\d+|o\d+|\d+o`)
)

// ParseSKU разбирает артикул на компоненты каталога:
// тип края в начале или в конце ("U3-...", "... U3", "Druk-U3" считается U3),
// размеры NxM (прямоугольник), NvM (овал), oN или No (круг),
// первый сегмент до размеров - ткань, остальные - узор.
func ParseSKU(sku string) storage.SaveProduct {
	remaining := strings.TrimSpace(sku)
	var edgeType *string

	for _, et := range edgeTokens {
		upper := strings.ToUpper(remaining)
		if !strings.HasPrefix(upper, strings.ToUpper(et)) {
			continue
		}
		next := len(et)
		if next < len(remaining) && !strings.ContainsRune("-_ ", rune(remaining[next])) {
			continue
		}
		edgeType = normalizeEdge(et)
		remaining = strings.TrimLeft(remaining[next:], "-_ ")
		break
	}

	if edgeType == nil {
		for _, et := range edgeTokens {
			upper := strings.ToUpper(remaining)
			token := strings.ToUpper(et)
			if strings.HasSuffix(upper, " "+token) || strings.HasSuffix(upper, "-"+token) {
				edgeType = normalizeEdge(et)
				remaining = strings.TrimRight(remaining[:len(remaining)-len(et)-1], "-_ ")
				break
			}
		}
	}

	normalized := strings.ReplaceAll(remaining, " ", "-")
	var parts []string
	for _, p := range strings.Split(normalized, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	var fabric, pattern string
	if len(parts) > 0 {
		fabric = parts[0]
	}
	if len(parts) > 1 {
		pattern = parts[1]
	}

	// Сегмент с размерами может стоять не последним, всё между тканью
	// и размерами - продолжение узора.
	var dims string
	for i, part := range parts {
		if reDims.MatchString(part) {
			dims = strings.ToLower(part)
			pattern = strings.Join(parts[1:i], "-")
			break
		}
	}
	if dims == "" && len(parts) > 0 {
		dims = strings.ToLower(parts[len(parts)-1])
		if len(parts) > 2 {
			pattern = strings.Join(parts[1:len(parts)-1], "-")
		}
	}

	out := storage.SaveProduct{
		SKU:      sku,
		Fabric:   fabric,
		Pattern:  pattern,
		Shape:    string(production.ShapeRectangular),
		EdgeType: edgeType,
	}

	switch {
	case strings.Contains(dims, "x"):
		if m := reRect.FindStringSubmatch(dims); m != nil {
			out.Width = atoiPtr(m[1])
			out.Height = atoiPtr(m[2])
		}
	case strings.Contains(dims, "v"):
		out.Shape = string(production.ShapeOval)
		if m := reOval.FindStringSubmatch(dims); m != nil {
			out.Width = atoiPtr(m[1])
			out.Height = atoiPtr(m[2])
		}
	case strings.Contains(dims, "o"):
		out.Shape = string(production.ShapeRound)
		if m := reRound.FindStringSubmatch(dims); m != nil {
			out.Diameter = atoiPtr(m[1])
		} else if m := reRoundSuffix.FindStringSubmatch(dims); m != nil {
			out.Diameter = atoiPtr(m[1])
		}
	}

	return out
}

func normalizeEdge(token string) *string {
	et := strings.ToUpper(token)
	if et == "DRUK-U3" {
		et = "U3"
	}
	if _, err := production.ParseEdgeType(et); err != nil {
		return nil
	}
	return &et
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
