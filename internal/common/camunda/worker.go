package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"application-intake/internal/common/config"
	"application-intake/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// NewClient connects to the Zeebe gateway.
func NewClient(cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}
	return client, nil
}

// Registrar opens job workers and closes them on shutdown.
type Registrar struct {
	client  zbc.Client
	logger  logger.Logger
	workers []worker.JobWorker
}

func NewRegistrar(client zbc.Client, log logger.Logger) *Registrar {
	return &Registrar{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "camunda"}),
	}
}

// Register opens a worker for taskType unless it is disabled.
func (r *Registrar) Register(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		r.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jobWorker := r.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()
	r.workers = append(r.workers, jobWorker)

	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Close stops every registered worker, waits for in-flight jobs, then closes the client.
func (r *Registrar) Close() {
	for _, w := range r.workers {
		w.Close()
		w.AwaitClose()
	}
	if err := r.client.Close(); err != nil {
		r.logger.Error("error closing zeebe client", map[string]interface{}{"error": err})
	}
}

// DecodeVariables unmarshals the job variables into v.
func DecodeVariables(job entities.Job, v interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), v); err != nil {
		return fmt.Errorf("parse job variables: %w", err)
	}
	return nil
}

// CompleteJob completes the job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
