// seed_catalogos genera la migración con los catálogos de prioridad y forma de entrega
// a partir del CSV institucional (exportado desde Excel en Windows-1252).
//
// Uso: go run ./cmd/seed_catalogos [ruta/catalogos.csv]
// Formato: catalogo,id,nombre   (catalogo = prioridad | forma_entrega)
// Escribe: internal/infrastructure/postgres/migrations/000002_catalogos.up.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// tablas destino por nombre de catálogo en el CSV.
var tablas = map[string]string{
	"prioridad":     "ct_clasificacion_prioridad",
	"forma_entrega": "ct_forma_entrega",
}

type fila struct {
	id     int
	nombre string
}

func main() {
	csvPath := "catalogos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	catalogos, err := leerCatalogos(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "000002_catalogos.up.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := escribirSQL(out, catalogos); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d prioridades, %d formas de entrega\n",
		outPath, len(catalogos["prioridad"]), len(catalogos["forma_entrega"]))
}

// leerCatalogos agrupa las filas por catálogo; la primera línea puede ser encabezado.
func leerCatalogos(r io.Reader) (map[string][]fila, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	out := make(map[string][]fila)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cat := strings.ToLower(strings.TrimSpace(rec[0]))
		if line == 1 && cat == "catalogo" {
			continue
		}
		if _, ok := tablas[cat]; !ok {
			return nil, fmt.Errorf("línea %d: catálogo %q desconocido", line, rec[0])
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("línea %d: id %q inválido", line, rec[1])
		}
		nombre := strings.TrimSpace(rec[2])
		if nombre == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", line)
		}
		out[cat] = append(out[cat], fila{id: id, nombre: nombre})
	}
	return out, nil
}

func escribirSQL(w io.Writer, catalogos map[string][]fila) error {
	var b strings.Builder
	b.WriteString("-- Generado con cmd/seed_catalogos a partir de los catálogos institucionales.\n")

	nombres := make([]string, 0, len(catalogos))
	for cat := range catalogos {
		nombres = append(nombres, cat)
	}
	// prioridad antes que forma_entrega
	sort.Sort(sort.Reverse(sort.StringSlice(nombres)))

	for _, cat := range nombres {
		filas := catalogos[cat]
		if len(filas) == 0 {
			continue
		}
		sort.Slice(filas, func(i, j int) bool { return filas[i].id < filas[j].id })
		fmt.Fprintf(&b, "INSERT INTO %s (id, nombre) VALUES\n", tablas[cat])
		for i, f := range filas {
			sep := ","
			if i == len(filas)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "    (%d, '%s')%s\n", f.id, escapeSQL(f.nombre), sep)
		}
		b.WriteString("ON CONFLICT (id) DO NOTHING;\n\n")
	}
	for _, cat := range nombres {
		if len(catalogos[cat]) == 0 {
			continue
		}
		t := tablas[cat]
		fmt.Fprintf(&b, "SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s));\n", t, t)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
