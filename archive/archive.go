// Package archive stores finished runs in DynamoDB so results can be
// looked up again by run id. Optional; the optimizer itself never touches
// it.
package archive

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

const tableName = "fretwise-runs"

// RunRecord is the archived summary of one optimization run.
type RunRecord struct {
	RunID        string
	Source       string
	BestFitness  float64
	Generations  int
	TerminatedBy string
	Tab          string
}

func newClient() (*dynamodb.DynamoDB, error) {
	cfg := aws.Config{}
	if endpoint := os.Getenv("DYNAMO_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = &endpoint
		cfg.Region = aws.String("localhost")
	}
	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a DynamoDB session: %w", err)
	}
	return dynamodb.New(sess), nil
}

func PutRun(rec RunRecord) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	item := map[string]*dynamodb.AttributeValue{
		"PK":           {S: aws.String(rec.RunID)},
		"Source":       {S: aws.String(rec.Source)},
		"BestFitness":  {N: aws.String(strconv.FormatFloat(rec.BestFitness, 'f', -1, 64))},
		"Generations":  {N: aws.String(strconv.Itoa(rec.Generations))},
		"TerminatedBy": {S: aws.String(rec.TerminatedBy)},
		"Tab":          {S: aws.String(rec.Tab)},
	}
	_, err = client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error from DynamoDB: %w", err)
	}
	return nil
}

func GetRun(runID string) (*RunRecord, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	out, err := client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(runID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error from DynamoDB: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("run %v not found", runID)
	}

	var rec RunRecord
	rec.RunID = runID
	if v := out.Item["Source"]; v != nil && v.S != nil {
		rec.Source = *v.S
	}
	if v := out.Item["BestFitness"]; v != nil && v.N != nil {
		rec.BestFitness, _ = strconv.ParseFloat(*v.N, 64)
	}
	if v := out.Item["Generations"]; v != nil && v.N != nil {
		rec.Generations, _ = strconv.Atoi(*v.N)
	}
	if v := out.Item["TerminatedBy"]; v != nil && v.S != nil {
		rec.TerminatedBy = *v.S
	}
	if v := out.Item["Tab"]; v != nil && v.S != nil {
		rec.Tab = *v.S
	}
	return &rec, nil
}
