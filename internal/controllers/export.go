package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet - одна выгрузка: заголовки и строки в том же порядке.
type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
	widths  map[string]float64
}

func wantsXLSX(ctx echo.Context) bool {
	return strings.ToLower(ctx.QueryParam("format")) == "xlsx"
}

func (s sheet) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", s.name); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err := f.SetCellStyle(s.name, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return nil, err
		}
	}
	for col, width := range s.widths {
		_ = f.SetColWidth(s.name, col, col, width)
	}
	return f, nil
}

func respondWithXLSX(ctx echo.Context, prefix string, s sheet) error {
	f, err := s.build()
	if err != nil {
		return err
	}
	defer f.Close()

	fileName := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
