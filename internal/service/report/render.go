package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMarkdown, FormatXLSX:
		return f, nil
	}
	return "", app_errors.Invalid("unknown report format %q", s)
}

// Rendered is a report ready to be served as a download.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

func Render(r *models.UserReport, f Format) (*Rendered, error) {
	base := "user_report_" + r.User.ID.String()
	switch f {
	case FormatJSON:
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return &Rendered{Filename: base + ".json", ContentType: "application/json", Body: body}, nil
	case FormatMarkdown:
		return &Rendered{Filename: base + ".md", ContentType: "text/markdown; charset=utf-8", Body: []byte(Markdown(r))}, nil
	case FormatXLSX:
		body, err := XLSX(r)
		if err != nil {
			return nil, err
		}
		return &Rendered{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	}
	return nil, app_errors.Invalid("unknown report format %q", f)
}

func Markdown(r *models.UserReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Progress report: %s\n\n", r.User.Name)
	fmt.Fprintf(&b, "- Email: %s\n", r.User.Email)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- Levels purchased: %d\n", len(r.Levels))

	for _, l := range r.Levels {
		fmt.Fprintf(&b, "\n## Level %d: %s\n\n", l.Level.LevelNumber, l.Level.Name)
		fmt.Fprintf(&b, "- Completed: %s\n", yesNo(l.Enrollment.IsCompleted))
		fmt.Fprintf(&b, "- Final exam available: %s\n", yesNo(l.Enrollment.CanTakeFinalExam))
		fmt.Fprintf(&b, "- Initial exam score: %s\n", score(l.Enrollment.InitialExamScore))
		fmt.Fprintf(&b, "- Final exam score: %s\n", score(l.Enrollment.FinalExamScore))
		fmt.Fprintf(&b, "- Score difference: %s\n", score(l.Enrollment.ScoreDifference))

		for _, v := range l.Videos {
			fmt.Fprintf(&b, "\n### %d. %s (%s)\n\n", v.Video.Order, v.Video.Name, videoState(v))
			if len(v.Questions) == 0 {
				b.WriteString("No questions.\n")
				continue
			}
			for _, q := range v.Questions {
				if q.Answer == nil {
					fmt.Fprintf(&b, "- %s: not answered\n", q.Question.Text)
					continue
				}
				fmt.Fprintf(&b, "- %s: %.2f%% (%d correct, %d wrong)\n",
					q.Question.Text, q.Answer.Percentage, q.Answer.CorrectWords, q.Answer.WrongWords)
				if len(q.Answer.WrongWordsList) > 0 {
					fmt.Fprintf(&b, "  - Wrong words: %s\n", strings.Join(q.Answer.WrongWordsList, ", "))
				}
			}
		}

		if len(l.Exams) > 0 {
			b.WriteString("\n### Exams\n\n| Type | Score | Correct | Wrong | Date |\n|---|---|---|---|---|\n")
			for _, e := range l.Exams {
				fmt.Fprintf(&b, "| %s | %.2f%% | %d | %d | %s |\n",
					e.Type, e.Percentage, e.CorrectWords, e.WrongWords, e.CreatedAt.Format("2006-01-02"))
			}
		}
	}
	return b.String()
}

const (
	levelsSheet  = "Levels"
	answersSheet = "Answers"
	examsSheet   = "Exams"
)

// XLSX renders the report as a workbook with one sheet each for levels,
// answers and exam attempts.
func XLSX(r *models.UserReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", levelsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{answersSheet, examsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	levels := [][]any{{"Level", "Name", "Videos", "Completed videos", "Completed", "Initial score", "Final score", "Difference"}}
	answers := [][]any{{"Level", "Video", "Question", "Correct", "Wrong", "Percentage", "Wrong words", "Submitted at"}}
	exams := [][]any{{"Level", "Type", "Correct", "Wrong", "Percentage", "Taken at"}}

	for _, l := range r.Levels {
		completed := 0
		for _, v := range l.Videos {
			if v.IsCompleted {
				completed++
			}
			for _, q := range v.Questions {
				if q.Answer == nil {
					continue
				}
				answers = append(answers, []any{
					l.Level.Name, v.Video.Name, q.Question.Text, q.Answer.CorrectWords, q.Answer.WrongWords,
					q.Answer.Percentage, strings.Join(q.Answer.WrongWordsList, ", "), q.Answer.SubmittedAt.Format("2006-01-02 15:04"),
				})
			}
		}
		levels = append(levels, []any{
			l.Level.LevelNumber, l.Level.Name, len(l.Videos), completed, yesNo(l.Enrollment.IsCompleted),
			cell(l.Enrollment.InitialExamScore), cell(l.Enrollment.FinalExamScore), cell(l.Enrollment.ScoreDifference),
		})
		for _, e := range l.Exams {
			exams = append(exams, []any{l.Level.Name, string(e.Type), e.CorrectWords, e.WrongWords, e.Percentage, e.CreatedAt.Format("2006-01-02 15:04")})
		}
	}

	for sheet, rows := range map[string][][]any{levelsSheet: levels, answersSheet: answers, examsSheet: exams} {
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func videoState(v models.VideoReport) string {
	switch {
	case v.IsCompleted:
		return "completed"
	case v.IsOpened:
		return "opened"
	}
	return "locked"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func score(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func cell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
