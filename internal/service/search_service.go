package service

import (
	"encoding/json"
	"fmt"
	"log"

	"anoa.com/studentrecords/internal/model"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const studentIndex = "students"

// SearchService keeps the student directory index in sync and answers
// free-text queries. A nil client disables indexing and tells callers to
// fall back to SQL matching.
type SearchService interface {
	Enabled() bool
	IndexStudent(student *model.Student) error
	DeleteStudent(id string) error
	Search(query string, limit int) ([]uuid.UUID, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) Enabled() bool {
	return s.client != nil
}

func (s *searchService) initIndexes() {
	filterable := []string{"department", "year", "status"}
	filterableInterface := make([]any, len(filterable))
	for i, v := range filterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(studentIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update students filterable attributes: %v", err)
	}

	log.Println("Meilisearch student index initialized")
}

type meiliStudentDoc struct {
	ID         string `json:"id"`
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Status     string `json:"status"`
}

func (s *searchService) IndexStudent(student *model.Student) error {
	if s.client == nil {
		return nil
	}

	doc := meiliStudentDoc{
		ID:         student.ID.String(),
		RollNumber: student.RollNumber,
		Name:       student.Name,
		Email:      student.Email,
		Department: student.Department,
		Year:       student.Year,
		Status:     student.Status,
	}

	_, err := s.client.Index(studentIndex).AddDocuments([]meiliStudentDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index student: %w", err)
	}
	return nil
}

func (s *searchService) DeleteStudent(id string) error {
	if s.client == nil {
		return nil
	}

	if _, err := s.client.Index(studentIndex).DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete student from index: %w", err)
	}
	return nil
}

func (s *searchService) Search(query string, limit int) ([]uuid.UUID, error) {
	if s.client == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	resp, err := s.client.Index(studentIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("student search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc meiliStudentDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
