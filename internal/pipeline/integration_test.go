package pipeline_test

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/suite"
	esContainer "github.com/testcontainers/testcontainers-go/modules/elasticsearch"

	"github.com/theleeeo/dictionary-indexer/internal/pipeline"
	"github.com/theleeeo/dictionary-indexer/internal/store"
)

// Suite spins up a real Elasticsearch container and drives CDC messages
// end to end through the dispatch table and the search-store gateway.
type Suite struct {
	suite.Suite

	esContainer *esContainer.ElasticsearchContainer
	searchStore *store.Client
	applier     *pipeline.Applier
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration suite in -short mode")
	}
	suite.Run(t, new(Suite))
}

func (s *Suite) SetupSuite() {
	log.SetOutput(os.Stderr)

	containerCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := esContainer.Run(containerCtx, "docker.elastic.co/elasticsearch/elasticsearch:8.9.0")
	s.Require().NoError(err)
	s.esContainer = c

	esAddr, err := s.esContainer.Endpoint(containerCtx, "https")
	s.Require().NoError(err)

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esAddr},
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		Username:  s.esContainer.Settings.Username,
		Password:  s.esContainer.Settings.Password,
	})
	s.Require().NoError(err)
	s.searchStore = store.NewFromClient(esClient)
	s.applier = pipeline.NewApplier(s.searchStore, nil)
}

func (s *Suite) TearDownSuite() {
	if s.esContainer != nil {
		_ = s.esContainer.Terminate(context.Background())
	}
}

func (s *Suite) Test_NewEvent_ProjectsDocumentIntoIndex() {
	ctx := s.T().Context()

	payload, err := json.Marshal(map[string]any{
		"document": map[string]any{"id": "w-100", "name": "Sales Order"},
	})
	s.Require().NoError(err)

	err = s.applier.Apply(ctx, string(pipeline.TopicWindow), string(pipeline.EventNew), payload)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		src, err := s.searchStore.GetByID(ctx, "window", "w-100")
		return err == nil && src["name"] == "Sales Order"
	}, 10*time.Second, 100*time.Millisecond, "window document never appeared in the index")
}

func (s *Suite) Test_DeleteEvent_RemovesDocument() {
	ctx := s.T().Context()

	payload, err := json.Marshal(map[string]any{
		"document": map[string]any{"id": "w-200", "name": "To Delete"},
	})
	s.Require().NoError(err)

	err = s.applier.Apply(ctx, string(pipeline.TopicWindow), string(pipeline.EventNew), payload)
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		_, err := s.searchStore.GetByID(ctx, "window", "w-200")
		return err == nil
	}, 10*time.Second, 100*time.Millisecond)

	err = s.applier.Apply(ctx, string(pipeline.TopicWindow), string(pipeline.EventDelete), payload)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		_, err := s.searchStore.GetByID(ctx, "window", "w-200")
		return err != nil
	}, 10*time.Second, 100*time.Millisecond, "window document was never deleted")
}

func (s *Suite) Test_UpdateEvent_FollowsDeleteWithUpsert() {
	ctx := s.T().Context()

	payload, err := json.Marshal(map[string]any{
		"document": map[string]any{"id": "w-300", "name": "Revised Sales Order"},
	})
	s.Require().NoError(err)

	err = s.applier.Apply(ctx, string(pipeline.TopicWindow), string(pipeline.EventUpdate), payload)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		src, err := s.searchStore.GetByID(ctx, "window", "w-300")
		return err == nil && src["name"] == "Revised Sales Order"
	}, 10*time.Second, 100*time.Millisecond, "window document was never upserted by the update event")
}
