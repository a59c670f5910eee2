package httpapi

import (
	"bytes"
	"fmt"

	"carekiosk/internal/stats"

	"github.com/xuri/excelize/v2"
)

// dailySheetHeader Daily 工作表表头
var dailySheetHeader = []string{"Date", "Expected", "Completed", "Skipped", "Missed"}

// reminderSheetHeader Reminders 工作表表头
var reminderSheetHeader = []string{
	"Title", "Time", "Type", "Active",
	"Expected", "Completed", "Skipped", "Missed", "Completion Rate (%)",
}

// GenerateComplianceReport 生成依从性报表 Excel（Daily + Reminders 两个工作表）
func GenerateComplianceReport(daily []stats.DailyBucket, perReminder []stats.ReminderPerf) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// Daily 工作表
	dailySheet := "Daily"
	index, err := f.NewSheet(dailySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, title := range dailySheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(dailySheet, cell, title)
	}
	if last, err := excelize.CoordinatesToCellName(len(dailySheetHeader), 1); err == nil {
		_ = f.SetCellStyle(dailySheet, "A1", last, headerStyle)
	}
	for i, b := range daily {
		missed := b.Expected - b.Completed - b.Skipped
		if missed < 0 {
			missed = 0
		}
		row := i + 2
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("A%d", row), b.Date)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("B%d", row), b.Expected)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("C%d", row), b.Completed)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("D%d", row), b.Skipped)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("E%d", row), missed)
	}

	// Reminders 工作表
	reminderSheet := "Reminders"
	if _, err := f.NewSheet(reminderSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for col, title := range reminderSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(reminderSheet, cell, title)
	}
	if last, err := excelize.CoordinatesToCellName(len(reminderSheetHeader), 1); err == nil {
		_ = f.SetCellStyle(reminderSheet, "A1", last, headerStyle)
	}
	for i, p := range perReminder {
		row := i + 2
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("A%d", row), p.Title)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("B%d", row), p.Time)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("C%d", row), string(p.Type))
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("D%d", row), p.Active)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("E%d", row), p.Expected)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("F%d", row), p.Completed)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("G%d", row), p.Skipped)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("H%d", row), p.Missed)
		_ = f.SetCellValue(reminderSheet, fmt.Sprintf("I%d", row), p.CompletionRate)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}
