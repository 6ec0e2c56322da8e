package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/repositories"
	"gorm.io/gorm"
)

// ImportService turns Trello board exports into tasks. The whole import
// is one transaction; a malformed payload imports nothing.
type ImportService struct {
	db    *gorm.DB
	tasks *repositories.TaskRepository
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{
		db:    db,
		tasks: repositories.NewTaskRepository(db),
	}
}

type trelloExport struct {
	Lists []trelloList `json:"lists"`
	Cards []trelloCard `json:"cards"`
}

type trelloList struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Closed bool         `json:"closed"`
	Cards  []trelloCard `json:"cards"`
}

type trelloCard struct {
	Name   string        `json:"name"`
	Desc   string        `json:"desc"`
	Due    *string       `json:"due"`
	Closed bool          `json:"closed"`
	IDList string        `json:"idList"`
	Labels []trelloLabel `json:"labels"`
}

type trelloLabel struct {
	Name string `json:"name"`
}

type mappedCard struct {
	card   trelloCard
	status models.Status
}

func (s *ImportService) FromTrelloJSON(userID string, payload []byte) (*models.ImportResult, error) {
	var export trelloExport
	if err := json.Unmarshal(payload, &export); err != nil {
		return nil, apperrors.Validation("invalid Trello JSON export: " + err.Error())
	}

	// Board exports nest cards under their lists; the flat form carries
	// them at the top level with an idList reference. Accept both.
	cards := make([]mappedCard, 0, len(export.Cards))
	statusByList := make(map[string]models.Status, len(export.Lists))
	for _, list := range export.Lists {
		status := statusFromListName(list.Name)
		statusByList[list.ID] = status
		for _, card := range list.Cards {
			if card.Closed {
				continue
			}
			cards = append(cards, mappedCard{card: card, status: status})
		}
	}
	for _, card := range export.Cards {
		if card.Closed {
			continue
		}
		status, ok := statusByList[card.IDList]
		if !ok {
			status = models.StatusWeek
		}
		cards = append(cards, mappedCard{card: card, status: status})
	}

	result := &models.ImportResult{TaskIDs: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		base := time.Now().UnixMilli()
		for i, mc := range cards {
			task := &models.Task{
				UserID:    userID,
				Title:     cardTitle(mc.card.Name),
				Status:    mc.status,
				SortOrder: float64(base + int64(i)),
				SoftDueAt: parseTrelloDate(mc.card.Due),
			}
			if desc := strings.TrimSpace(mc.card.Desc); desc != "" {
				task.Description = &desc
			}
			names := make([]string, 0, len(mc.card.Labels))
			for _, label := range mc.card.Labels {
				names = append(names, label.Name)
			}
			if len(names) > 0 {
				tags, err := tasks.GetOrCreateTags(names)
				if err != nil {
					return err
				}
				task.Tags = tags
			}
			if err := tasks.Create(task); err != nil {
				return err
			}
			result.TaskIDs = append(result.TaskIDs, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.ImportedCount = len(result.TaskIDs)
	return result, nil
}

func (s *ImportService) FromTrelloCSV(userID string, payload []byte) (*models.ImportResult, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Validation("invalid CSV: " + err.Error())
	}
	if len(records) == 0 {
		return nil, apperrors.Validation("CSV has no header row")
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameIdx, ok := findColumn(col, "card name", "name", "title")
	if !ok {
		return nil, apperrors.Validation("CSV must have a name column")
	}
	listIdx, hasList := findColumn(col, "list", "list name")
	dueIdx, hasDue := findColumn(col, "due", "due date")
	descIdx, hasDesc := findColumn(col, "description", "desc")
	labelsIdx, hasLabels := findColumn(col, "labels")

	result := &models.ImportResult{TaskIDs: []string{}}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		base := time.Now().UnixMilli()
		for i, record := range records[1:] {
			status := models.StatusWeek
			if hasList {
				status = statusFromListName(field(record, listIdx))
			}
			task := &models.Task{
				UserID:    userID,
				Title:     cardTitle(field(record, nameIdx)),
				Status:    status,
				SortOrder: float64(base + int64(i)),
			}
			if hasDue {
				if raw := field(record, dueIdx); raw != "" {
					task.SoftDueAt = parseTrelloDate(&raw)
				}
			}
			if hasDesc {
				if desc := field(record, descIdx); desc != "" {
					task.Description = &desc
				}
			}
			if hasLabels {
				if raw := field(record, labelsIdx); raw != "" {
					tags, err := tasks.GetOrCreateTags(strings.Split(raw, ","))
					if err != nil {
						return err
					}
					task.Tags = tags
				}
			}
			if err := tasks.Create(task); err != nil {
				return err
			}
			result.TaskIDs = append(result.TaskIDs, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.ImportedCount = len(result.TaskIDs)
	return result, nil
}

func findColumn(col map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := col[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// cardTitle imports blank-named cards under a placeholder title instead
// of dropping them.
func cardTitle(name string) string {
	if title := strings.TrimSpace(name); title != "" {
		return title
	}
	return "Untitled Task"
}

// statusFromListName maps a Trello list name onto the task lifecycle.
// Substring matching, case-insensitive, first branch wins; lists that
// match nothing land in week.
func statusFromListName(name string) models.Status {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "backlog"), strings.Contains(n, "ideas"), strings.Contains(n, "later"):
		return models.StatusBacklog
	case strings.Contains(n, "to do"), strings.Contains(n, "todo"), strings.Contains(n, "week"):
		return models.StatusWeek
	case strings.Contains(n, "today"), strings.Contains(n, "doing"), strings.Contains(n, "in progress"):
		return models.StatusToday
	case strings.Contains(n, "done"), strings.Contains(n, "completed"):
		return models.StatusDone
	case strings.Contains(n, "waiting"), strings.Contains(n, "blocked"):
		return models.StatusWaiting
	default:
		return models.StatusWeek
	}
}

var trelloDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

func parseTrelloDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	for _, layout := range trelloDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
