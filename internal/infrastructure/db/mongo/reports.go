package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

const collectionReports = "reports"

type ReportRepository struct {
	col *mongo.Collection
	ids sequence
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports), ids: newSequence(db, collectionReports)}
}

type reportDoc struct {
	ID        int64   `bson:"_id"`
	UserID    int64   `bson:"user_id"`
	City      string  `bson:"city"`
	Status    string  `bson:"status"`
	FilePath  *string `bson:"file_path,omitempty"`
	CreatedAt int64   `bson:"created_at"`
}

func (d reportDoc) toDomain() *domain.Report {
	return &domain.Report{
		ID:        d.ID,
		UserID:    d.UserID,
		City:      d.City,
		Status:    domain.ReportStatus(d.Status),
		FilePath:  d.FilePath,
		CreatedAt: unixToTime(d.CreatedAt),
	}
}

func reportIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}
	doc := reportDoc{
		ID:        id,
		UserID:    report.UserID,
		City:      report.City,
		Status:    string(report.Status),
		CreatedAt: report.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) List(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != 0 {
		query["user_id"] = filter.UserID
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	reports, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *ReportRepository) find(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]*domain.Report, error) {
	cur, err := r.col.Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(docs))
	for _, d := range docs {
		reports = append(reports, d.toDomain())
	}
	return reports, nil
}

func (r *ReportRepository) Complete(ctx context.Context, id int64, filePath string) error {
	return r.transition(ctx, id, bson.M{"status": string(domain.ReportCompleted), "file_path": filePath})
}

func (r *ReportRepository) Fail(ctx context.Context, id int64) error {
	return r.transition(ctx, id, bson.M{"status": string(domain.ReportFailed)})
}

// transition applies set only while the report is still pending.
func (r *ReportRepository) transition(ctx context.Context, id int64, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.ReportPending)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id int64) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("delete report: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) DeleteByUser(ctx context.Context, userID int64) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reports, err := r.find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return reports, nil
	}

	ids := make([]int64, 0, len(reports))
	for _, rep := range reports {
		ids = append(ids, rep.ID)
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete user reports: %w", err)
	}
	return reports, nil
}
