package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"field_mates_server/logging"
	"field_mates_server/models"
	"field_mates_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attributes every stored item carries besides the record fields.
const (
	RecordNameAttribute = "recordName"
	ModifiedAtAttribute = "modifiedAt"
)

// DynamoAPI is the part of the DynamoDB client used by DynamoService.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoService is a Database keeping each record type in its own DynamoDB
// table, named by TableName. Record assets go to Assets.
type DynamoService struct {
	Client    DynamoAPI
	Assets    AssetStore
	TableName func(recordType string) string
	Log       logging.Logger

	now func() time.Time
}

// InitializeDynamoDBClient creates a DynamoDB client. A non-empty endpoint
// points the client at a local or emulated DynamoDB.
func InitializeDynamoDBClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// AssetKey is the object key an asset field of a record is uploaded under.
func AssetKey(id models.RecordID, field string) string {
	return path.Join("assets", id.RecordType, id.Name, field)
}

func (ds *DynamoService) table(recordType string) string {
	if ds.TableName == nil {
		return recordType
	}
	return ds.TableName(recordType)
}

func (ds *DynamoService) log() logging.Logger {
	return logging.OrNoOp(ds.Log)
}

func (ds *DynamoService) clock() time.Time {
	if ds.now != nil {
		return ds.now()
	}
	return time.Now()
}

func (ds *DynamoService) CreateRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	return ds.put(ctx, rec, true)
}

func (ds *DynamoService) SaveRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	return ds.put(ctx, rec, false)
}

func (ds *DynamoService) put(ctx context.Context, rec *models.Record, mustBeNew bool) (*models.Record, error) {
	if err := checkRecordID(rec); err != nil {
		return nil, err
	}
	stored := rec.Clone()
	stored.ModifiedAt = ds.clock()

	item, err := ds.itemFor(ctx, stored)
	if err != nil {
		return nil, err
	}

	tableName := ds.table(stored.Type)
	input := &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      item,
	}
	if mustBeNew {
		input.ConditionExpression = aws.String("attribute_not_exists(#name)")
		input.ExpressionAttributeNames = map[string]string{"#name": RecordNameAttribute}
	}

	ds.log().Debugf("putting record %s into table '%s'", stored.ID, tableName)
	if _, err := ds.Client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, fmt.Errorf("record %s: %w", stored.ID, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return stored, nil
}

func (ds *DynamoService) FetchRecord(ctx context.Context, id models.RecordID) (*models.Record, error) {
	tableName := ds.table(id.RecordType)
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &tableName,
		Key:            recordKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return nil, nil
	}
	return ds.recordFrom(ctx, id.RecordType, output.Item)
}

// QueryRecords scans the table of recordType with pred as the filter. Scan
// pages are read until limit matches are collected or the table is
// exhausted; callers only ever see one bounded batch.
func (ds *DynamoService) QueryRecords(ctx context.Context, recordType string, pred Predicate, limit int32) ([]QueryResult, error) {
	filter, names, values, err := CompileFilter(pred)
	if err != nil {
		return nil, err
	}

	tableName := ds.table(recordType)
	input := &dynamodb.ScanInput{
		TableName: &tableName,
	}
	if filter != "" {
		input.FilterExpression = &filter
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var items []map[string]types.AttributeValue
	for {
		if limit > 0 {
			remaining := limit - int32(len(items))
			input.Limit = &remaining
		}
		output, err := ds.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, output.Items...)

		if len(output.LastEvaluatedKey) == 0 || (limit > 0 && int32(len(items)) >= limit) {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	if limit > 0 && int32(len(items)) > limit {
		items = items[:limit]
	}

	results := make([]QueryResult, 0, len(items))
	for _, item := range items {
		name, _ := utils.ExtractString(item, RecordNameAttribute)
		rec, err := ds.recordFrom(ctx, recordType, item)
		results = append(results, QueryResult{
			Record: rec,
			ID:     models.RecordID{RecordType: recordType, Name: name},
			Err:    err,
		})
	}
	return results, nil
}

func (ds *DynamoService) DeleteRecord(ctx context.Context, id models.RecordID) (models.RecordID, error) {
	tableName := ds.table(id.RecordType)
	output, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                &tableName,
		Key:                      recordKey(id),
		ConditionExpression:      aws.String("attribute_exists(#name)"),
		ExpressionAttributeNames: map[string]string{"#name": RecordNameAttribute},
		ReturnValues:             types.ReturnValueAllOld,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return models.RecordID{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return models.RecordID{}, fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}

	// the record is gone either way; leftover objects only cost storage
	for field := range output.Attributes {
		key, ok := utils.ExtractAssetKey(output.Attributes, field)
		if !ok || ds.Assets == nil {
			continue
		}
		if err := ds.Assets.Remove(ctx, key); err != nil {
			ds.log().Warnf("record %s deleted but asset %q was not: %v", id, key, err)
		}
	}
	return id, nil
}

// itemFor builds the stored item of rec, uploading its assets first.
//
// TODO: clearing an asset field does not remove the object uploaded for it;
// a save should diff against the stored item and remove dropped keys.
func (ds *DynamoService) itemFor(ctx context.Context, rec *models.Record) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(rec.Fields)+len(rec.Assets)+2)
	for name, v := range rec.Fields {
		item[name] = v
	}

	for name, asset := range rec.Assets {
		if asset.FilePath != "" {
			if ds.Assets == nil {
				return nil, fmt.Errorf("record %s has asset %q but no asset store is configured", rec.ID, name)
			}
			key := AssetKey(*rec.ID, name)
			if err := ds.Assets.Upload(ctx, key, asset.FilePath); err != nil {
				return nil, err
			}
			asset.Key = key
		}
		if asset.Key == "" {
			continue
		}
		item[name] = utils.AssetValue(asset.Key)
	}

	item[RecordNameAttribute] = utils.StringValue(rec.ID.Name)
	item[ModifiedAtAttribute] = utils.TimeValue(rec.ModifiedAt)
	return item, nil
}

// recordFrom rebuilds a record from a stored item, downloading its assets.
func (ds *DynamoService) recordFrom(ctx context.Context, recordType string, item map[string]types.AttributeValue) (*models.Record, error) {
	name, ok := utils.ExtractString(item, RecordNameAttribute)
	if !ok {
		return nil, fmt.Errorf("item in table '%s' has no %s", ds.table(recordType), RecordNameAttribute)
	}

	rec := models.NewRecord(recordType)
	rec.ID = &models.RecordID{RecordType: recordType, Name: name}
	if t, ok := utils.ExtractTime(item, ModifiedAtAttribute); ok {
		rec.ModifiedAt = t
	}

	for field, v := range item {
		if field == RecordNameAttribute || field == ModifiedAtAttribute {
			continue
		}
		if key, ok := utils.ExtractAssetKey(item, field); ok {
			if ds.Assets == nil {
				return nil, fmt.Errorf("record %s has asset %q but no asset store is configured", rec.ID, field)
			}
			filePath, err := ds.Assets.Download(ctx, key)
			if err != nil {
				return nil, err
			}
			rec.SetAsset(field, &models.Asset{Key: key, FilePath: filePath})
			continue
		}
		rec.Set(field, v)
	}
	return rec, nil
}

func recordKey(id models.RecordID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		RecordNameAttribute: utils.StringValue(id.Name),
	}
}
