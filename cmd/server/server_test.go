package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/cmd/server/internal/routes"
	routesv1 "github.com/autograde/grader/cmd/server/internal/routes/v1"
	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/config"
	"github.com/autograde/grader/internal/feedback"
	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/scoring"
	mockscoring "github.com/autograde/grader/internal/scoring/mock"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

func essayConfig() types.AssignmentGradingConfig {
	return types.AssignmentGradingConfig{
		AssignmentID: "101",
		Kind:         types.AssignmentKindEssay,
		TotalPoints:  100,
		Criteria:     map[string]float64{"content": 50, "structure": 30, "grammar": 20},
		Version:      1,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Grading: config.GradingConfig{MaxConcurrency: 2},
		Routing: config.RoutingConfig{Threshold: grading.DefaultThreshold},
		Feedback: config.FeedbackConfig{
			Tones: config.DefaultTones(),
		},
	}
}

type ServerTestSuite struct {
	suite.Suite

	scorer      *mockscoring.MockScorer
	assignments *store.MemoryAssignmentSource
	grades      *store.MemoryGradeStore
	server      *httptest.Server
}

func (s *ServerTestSuite) SetupSuite() {
	logger.InitSlog(slog.LevelWarn)
	audit.SetOutput(io.Discard)
}

func (s *ServerTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.scorer = mockscoring.NewMockScorer(ctrl)
	s.assignments = store.NewMemoryAssignmentSource(essayConfig())
	s.grades = store.NewMemoryGradeStore()

	cfg := testConfig()
	synthesizer := feedback.NewSynthesizer(nil)
	coordinator := grading.NewCoordinator(
		grading.NewPreprocessor(nil),
		grading.NewAcquirer(s.scorer, time.Second),
		grading.NewRouter(cfg.Routing.Threshold, nil),
		synthesizer,
		s.assignments,
		s.grades,
	)

	v1Handler := routesv1.NewHandler(
		coordinator,
		coordinator,
		grading.NewBulkCoordinator(coordinator, cfg.Grading.MaxConcurrency),
		synthesizer,
		s.assignments,
		s.grades,
		nil,
		cfg,
	)

	e, err := routes.BuildEcho(logger.Logger)
	s.Require().NoError(err, "failed to construct router")

	v1Handler.AddRoutes(e)

	s.server = httptest.NewServer(e)
}

func (s *ServerTestSuite) TearDownTest() {
	s.server.Close()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type resp struct {
	body string
	code int
}

func doRequest(t *testing.T, req *http.Request) (*resp, error) {
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "failed to send http request")
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err, "failed to read body")

	return &resp{body: string(body), code: res.StatusCode}, nil
}

func (s *ServerTestSuite) send(method, path, payload string) *resp {
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err, "failed to construct http request")
	if payload != "" {
		req.Header.Add("Content-Type", "application/json")
	}

	r, err := doRequest(s.T(), req)
	s.Require().NoError(err)

	return r
}

func (s *ServerTestSuite) scoreAs(results ...scoring.Result) {
	calls := make([]any, 0, len(results))
	for _, result := range results {
		calls = append(calls, s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(result, nil))
	}
	gomock.InOrder(calls...)
}

func (s *ServerTestSuite) grade(submissionID, studentID string) *resp {
	return s.send(http.MethodPost, "/v1/grade/", fmt.Sprintf(
		`{"id": %q, "assignment_id": "101", "student_id": %q, "content": "Plants turn light into sugar."}`,
		submissionID, studentID,
	))
}

func decode[T any](t *testing.T, body string) T {
	var out T
	require.NoError(t, json.Unmarshal([]byte(body), &out), "failed to decode body %s", body)
	return out
}

func notFoundBodyTester(t *testing.T, body map[string]any) {
	assert.Contains(t, body, "message", "contains message key")
	assert.Contains(t, body["message"], "not found")
}

func assertErrorBodyWithFields(t *testing.T, body map[string]any) {
	assert.Contains(t, body, "message", "contains message key")
	assert.Contains(t, body, "fields", "contains fields key")
}

func (s *ServerTestSuite) Test_Health() {
	r := s.send(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, r.code)
}

func (s *ServerTestSuite) Test_GradeOne() {
	s.Run("Automated", func() {
		s.scoreAs(scoring.Result{
			Score:      87,
			Confidence: 0.92,
			Breakdown:  map[string]float64{"content": 45, "structure": 27, "grammar": 15},
		})

		r := s.grade("sub-1", "alice")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		record := decode[types.GradeRecord](s.T(), r.body)
		s.Equal(types.GradingMethodAutomated, record.Method)
		s.Equal("B", record.Grade)
		s.Require().NotNil(record.Score)
		s.InDelta(87, *record.Score, 1e-9)
		s.Equal("alice", record.StudentID)
	})

	s.Run("UnknownAssignmentRecordsError", func() {
		r := s.send(http.MethodPost, "/v1/grade/",
			`{"id": "sub-2", "assignment_id": "999", "student_id": "bob", "content": "text"}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		record := decode[types.GradeRecord](s.T(), r.body)
		s.Equal(types.GradingMethodError, record.Method)
		s.Nil(record.Score)
		s.NotEmpty(record.ErrorKind)
	})

	s.Run("MissingFields", func() {
		r := s.send(http.MethodPost, "/v1/grade/", `{"assignment_id": "101"}`)
		s.Equal(http.StatusBadRequest, r.code)

		body := decode[map[string]any](s.T(), r.body)
		assertErrorBodyWithFields(s.T(), body)
		s.Contains(body["fields"].(map[string]any), "id")
		s.Contains(body["fields"].(map[string]any), "student_id")
	})

	s.Run("NonNumericAssignment", func() {
		r := s.send(http.MethodPost, "/v1/grade/",
			`{"id": "sub-3", "assignment_id": "abc", "student_id": "bob", "content": "text"}`)
		s.Equal(http.StatusBadRequest, r.code)

		body := decode[map[string]any](s.T(), r.body)
		s.Contains(body["fields"].(map[string]any)["assignment_id"], "numeric")
	})

	s.Run("Malformed", func() {
		r := s.send(http.MethodPost, "/v1/grade/", `{"id": `)
		s.Equal(http.StatusBadRequest, r.code)
	})
}

func (s *ServerTestSuite) Test_GradeBatch() {
	s.Run("Valid", func() {
		s.scoreAs(
			scoring.Result{Score: 91, Confidence: 0.9},
			scoring.Result{Score: 72, Confidence: 0.9},
		)

		r := s.send(http.MethodPost, "/v1/grade/batch/", `{"batch_id": "b-1", "submissions": [
			{"id": "sub-1", "assignment_id": "101", "student_id": "alice", "content": "one"},
			{"id": "sub-2", "assignment_id": "101", "student_id": "bob", "content": "two"}
		]}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		body := decode[map[string]any](s.T(), r.body)
		s.Equal("b-1", body["batch_id"])
		items := body["items"].([]any)
		s.Require().Len(items, 2)
		for i, raw := range items {
			item := raw.(map[string]any)
			s.Equal(string(types.BatchItemSuccess), item["status"])
			s.InDelta(i, item["index"], 0)
		}
	})

	s.Run("InvalidItemFailsOnlyItsSlot", func() {
		s.scoreAs(
			scoring.Result{Score: 80, Confidence: 0.9},
			scoring.Result{Score: 80, Confidence: 0.9},
		)

		r := s.send(http.MethodPost, "/v1/grade/batch/", `{"batch_id": "b-2", "submissions": [
			{"id": "sub-4", "assignment_id": "101", "student_id": "dan", "content": "four"},
			{"id": "", "assignment_id": "101", "student_id": "erin", "content": "five"},
			{"id": "sub-6", "assignment_id": "101", "student_id": "frank", "content": "six"}
		]}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		result := decode[types.BatchResult](s.T(), r.body)
		s.Require().Len(result.Items, 3)
		s.Equal(types.BatchItemSuccess, result.Items[0].Status)
		s.Equal(types.BatchItemError, result.Items[1].Status)
		s.NotEmpty(result.Items[1].Error)
		s.Nil(result.Items[1].Record)
		s.Equal(types.BatchItemSuccess, result.Items[2].Status)
	})

	s.Run("UnknownAssignmentFailsSlot", func() {
		r := s.send(http.MethodPost, "/v1/grade/batch/", `{"submissions": [
			{"id": "sub-3", "assignment_id": "999", "student_id": "carol", "content": "three"}
		]}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		result := decode[types.BatchResult](s.T(), r.body)
		s.Require().Len(result.Items, 1)
		s.Equal("sub-3", result.Items[0].SubmissionID)
	})

	s.Run("Empty", func() {
		r := s.send(http.MethodPost, "/v1/grade/batch/", `{"submissions": []}`)
		s.Equal(http.StatusBadRequest, r.code)

		body := decode[map[string]any](s.T(), r.body)
		assertErrorBodyWithFields(s.T(), body)
	})
}

func (s *ServerTestSuite) Test_CurrentGradeAndHistory() {
	s.scoreAs(
		scoring.Result{Score: 55, Confidence: 0.9},
		scoring.Result{Score: 81, Confidence: 0.9},
	)
	s.Require().Equal(http.StatusOK, s.grade("sub-1", "alice").code)
	s.Require().Equal(http.StatusOK, s.grade("sub-1", "alice").code)

	s.Run("Current", func() {
		r := s.send(http.MethodGet, "/v1/grade/sub-1/", "")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		record := decode[types.GradeRecord](s.T(), r.body)
		s.InDelta(81, *record.Score, 1e-9)
		s.Nil(record.SupersededAt)
	})

	s.Run("History", func() {
		r := s.send(http.MethodGet, "/v1/grade/sub-1/history/", "")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		history := decode[[]types.GradeRecord](s.T(), r.body)
		s.Require().Len(history, 2)

		current := 0
		for _, record := range history {
			if record.IsCurrent() {
				current++
			}
		}
		s.Equal(1, current, "exactly one current record")
	})

	s.Run("NotFound", func() {
		r := s.send(http.MethodGet, "/v1/grade/missing/", "")
		s.Equal(http.StatusNotFound, r.code)
		notFoundBodyTester(s.T(), decode[map[string]any](s.T(), r.body))

		r = s.send(http.MethodGet, "/v1/grade/missing/history/", "")
		s.Equal(http.StatusNotFound, r.code)
	})
}

func (s *ServerTestSuite) Test_Override() {
	s.scoreAs(scoring.Result{Score: 62, Confidence: 0.3})
	s.Require().Equal(http.StatusOK, s.grade("sub-1", "alice").code)

	tests := []struct {
		name           string
		submissionID   string
		payload        string
		bodyTester     func(t *testing.T, body map[string]any)
		expectedStatus int
	}{
		{
			name:           "Valid",
			submissionID:   "sub-1",
			payload:        `{"score": 95, "note": "checked by hand"}`,
			expectedStatus: http.StatusOK,
			bodyTester: func(t *testing.T, body map[string]any) {
				assert.Equal(t, string(types.GradingMethodManualOverride), body["grading_method"])
				assert.Equal(t, "A", body["grade"])
				assert.InDelta(t, 95, body["score"], 1e-9)
			},
		},
		{
			name:           "NotGraded",
			submissionID:   "sub-404",
			payload:        `{"score": 95}`,
			expectedStatus: http.StatusNotFound,
			bodyTester:     notFoundBodyTester,
		},
		{
			name:           "MissingScore",
			submissionID:   "sub-1",
			payload:        `{"note": "no score"}`,
			expectedStatus: http.StatusBadRequest,
			bodyTester: func(t *testing.T, body map[string]any) {
				assertErrorBodyWithFields(t, body)
				assert.Contains(t, body["fields"].(map[string]any), "score")
			},
		},
		{
			name:           "NoteTooLong",
			submissionID:   "sub-1",
			payload:        fmt.Sprintf(`{"score": 10, "note": %q}`, strings.Repeat("a", 2001)),
			expectedStatus: http.StatusBadRequest,
			bodyTester:     assertErrorBodyWithFields,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			r := s.send(http.MethodPost, fmt.Sprintf("/v1/grade/%s/override/", tt.submissionID), tt.payload)
			s.Equal(tt.expectedStatus, r.code, r.body)

			tt.bodyTester(s.T(), decode[map[string]any](s.T(), r.body))
		})
	}

	history, err := s.grades.History(s.T().Context(), "sub-1")
	s.Require().NoError(err)
	s.Len(history, 2, "override adds one record")
}

func (s *ServerTestSuite) Test_Feedback() {
	s.Run("JSON", func() {
		r := s.send(http.MethodPost, "/v1/feedback/", `{
			"score": 87, "total_points": 100, "kind": "essay",
			"breakdown": {"content": 45, "structure": 27, "grammar": 15},
			"criteria": {"content": 50, "structure": 30, "grammar": 20}
		}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		fb := decode[types.FeedbackRecord](s.T(), r.body)
		s.Equal(feedback.ToneGood, fb.Tone)
		s.NotEmpty(fb.Summary)
		s.NotEmpty(fb.NextSteps)
	})

	s.Run("Markdown", func() {
		r := s.send(http.MethodPost, "/v1/feedback/", `{"score": 40, "total_points": 50, "format": "markdown"}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)
		s.Contains(r.body, "#")
	})

	s.Run("ScoreAboveTotal", func() {
		r := s.send(http.MethodPost, "/v1/feedback/", `{"score": 60, "total_points": 50}`)
		s.Equal(http.StatusBadRequest, r.code)
		assertErrorBodyWithFields(s.T(), decode[map[string]any](s.T(), r.body))
	})

	s.Run("UnknownFormat", func() {
		r := s.send(http.MethodPost, "/v1/feedback/", `{"score": 10, "total_points": 50, "format": "html"}`)
		s.Equal(http.StatusBadRequest, r.code)
	})
}

func (s *ServerTestSuite) Test_Analytics() {
	s.scoreAs(
		scoring.Result{Score: 95, Confidence: 0.9},
		scoring.Result{Score: 87, Confidence: 0.9},
		scoring.Result{Score: 76, Confidence: 0.5},
	)
	for i, student := range []string{"alice", "bob", "carol"} {
		s.Require().Equal(http.StatusOK, s.grade(fmt.Sprintf("sub-%d", i), student).code)
	}

	s.Run("Valid", func() {
		r := s.send(http.MethodGet, "/v1/assignment/101/analytics/", "")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		stats := decode[types.AssignmentAnalytics](s.T(), r.body)
		s.Equal(3, stats.Count)
		s.InDelta(86, stats.Mean, 1e-9)
		s.InDelta(87, stats.Median, 1e-9)
		s.Equal(map[string]int{"A": 1, "B": 1, "C": 1}, stats.Distribution)
		s.Equal(2, stats.ConfidenceBuckets.High)
		s.Equal(1, stats.ConfidenceBuckets.Medium)
	})

	s.Run("NoGrades", func() {
		r := s.send(http.MethodGet, "/v1/assignment/202/analytics/", "")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		stats := decode[types.AssignmentAnalytics](s.T(), r.body)
		s.Equal(0, stats.Count)
	})

	s.Run("BadRule", func() {
		r := s.send(http.MethodGet, "/v1/assignment/101/analytics/?rule=bogus", "")
		s.Equal(http.StatusBadRequest, r.code)
	})
}

func (s *ServerTestSuite) Test_Config() {
	s.Run("Get", func() {
		r := s.send(http.MethodGet, "/v1/assignment/101/config/", "")
		s.Require().Equal(http.StatusOK, r.code, r.body)

		cfg := decode[types.AssignmentGradingConfig](s.T(), r.body)
		s.InDelta(100, cfg.TotalPoints, 1e-9)
		s.Equal(types.AssignmentKindEssay, cfg.Kind)
	})

	s.Run("GetMissing", func() {
		r := s.send(http.MethodGet, "/v1/assignment/303/config/", "")
		s.Equal(http.StatusNotFound, r.code)
	})

	s.Run("PutNew", func() {
		r := s.send(http.MethodPut, "/v1/assignment/303/config/", `{
			"assignment_id": "ignored", "kind": "math", "total_points": 10,
			"criteria": {"method": 6, "answer": 4}
		}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		cfg := decode[types.AssignmentGradingConfig](s.T(), r.body)
		s.Equal("303", cfg.AssignmentID, "path wins over body")
		s.Equal(1, cfg.Version)
	})

	s.Run("PutBumpsVersion", func() {
		r := s.send(http.MethodPut, "/v1/assignment/101/config/", `{"kind": "essay", "total_points": 50}`)
		s.Require().Equal(http.StatusOK, r.code, r.body)

		cfg := decode[types.AssignmentGradingConfig](s.T(), r.body)
		s.Equal(2, cfg.Version)
		s.InDelta(50, cfg.TotalPoints, 1e-9)
	})

	s.Run("PutWeightMismatch", func() {
		r := s.send(http.MethodPut, "/v1/assignment/101/config/", `{
			"kind": "essay", "total_points": 100, "criteria": {"content": 10}
		}`)
		s.Equal(http.StatusBadRequest, r.code, r.body)
	})

	s.Run("PutNonPositiveTotal", func() {
		r := s.send(http.MethodPut, "/v1/assignment/101/config/", `{"kind": "essay", "total_points": 0}`)
		s.Equal(http.StatusBadRequest, r.code, r.body)
	})
}
