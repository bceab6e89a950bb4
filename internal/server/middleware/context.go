package middleware

import (
	"docgraph/internal/util"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"docgraph/pkg/ai"
	gai "docgraph/pkg/ai/openai"
	"docgraph/pkg/chunk"
	"docgraph/pkg/graph"
	"docgraph/pkg/query"
	"docgraph/pkg/store"
	pgxstore "docgraph/pkg/store/pgx"
)

type App struct {
	DBConn      *pgxpool.Pool
	Queue       *amqp091.Channel
	S3          *s3.Client
	AiClient    ai.GraphAIClient
	Storage     store.GraphStorage
	GraphClient *graph.GraphClient
	RAG         *query.GraphRAGClient
	EmbedDim    int
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	s3Client *s3.Client,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			aiClient := gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
				EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
				ChatModel:       util.GetEnv("AI_CHAT_DESCRIBE_MODEL"),
				ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

				EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
				EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
				ChatURL:      util.GetEnv("AI_CHAT_URL"),
				ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			})

			embedDim := int(util.GetEnvNumeric("AI_EMBED_DIM", 1536))
			storage := pgxstore.NewGraphDBStorageWithConnection(db, embedDim)

			chunker := chunk.NewChunker(chunk.NewChunkerParams{
				AIClient:       aiClient,
				MaxChunkTokens: int(util.GetEnvNumeric("CHUNK_MAX_TOKENS", 512)),
			})

			graphClient := graph.NewGraphClient(graph.NewGraphClientParams{
				AIClient: aiClient,
				Chunker:  chunker,
				EmbedDim: embedDim,
			})

			rag := query.NewGraphRAGClient(query.NewGraphRAGClientParams{
				AIClient: aiClient,
				Storage:  storage,
				EmbedDim: embedDim,
			})

			app := &App{
				DBConn:      db,
				Queue:       queue,
				S3:          s3Client,
				AiClient:    aiClient,
				Storage:     storage,
				GraphClient: graphClient,
				RAG:         rag,
				EmbedDim:    embedDim,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
