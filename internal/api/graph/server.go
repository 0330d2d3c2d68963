package graph

import (
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"go.uber.org/zap"
)

// GraphQLServer GraphQL服务
type GraphQLServer struct {
	schema   *graphql.Schema
	handler  *relay.Handler
	resolver *Resolver
	path     string
}

// GraphQL Schema定义
const schemaString = `
scalar Long

type Agenda {
  id: ID!
  title: String!
  description: String!
  createdAt: String!
}

type Associate {
  id: ID!
  name: String!
  cpf: String!
  createdAt: String!
}

type Session {
  id: ID!
  agendaId: ID!
  startTime: String!
  endTime: String!
  durationMinutes: Long!
  status: String!
}

type VoteConfirmation {
  associateId: ID!
  sessionId: ID!
  option: String!
  message: String!
}

type SessionResult {
  sessionId: ID!
  agendaId: ID!
  agendaTitle: String!
  yesVotes: Long!
  noVotes: Long!
  totalVotes: Long!
  status: String!
  result: String!
}

input VoteInput {
  sessionId: ID!
  cpf: String!
  name: String
  option: String!
}

type Query {
  agendas: [Agenda!]!
  agenda(id: ID!): Agenda!
  associates: [Associate!]!
  associate(cpf: String!): Associate!
  sessions: [Session!]!
  session(id: ID!): Session!
  # 会话计票结果，会话未结束时为 SESSION_IN_PROGRESS
  result(sessionId: ID!): SessionResult!
}

type Mutation {
  createAgenda(title: String!, description: String!): Agenda!
  registerAssociate(name: String!, cpf: String!): Associate!
  # 时长不大于0时按1分钟处理
  openSession(agendaId: ID!, durationMinutes: Long): Session!
  castVote(input: VoteInput!): VoteConfirmation!
}

schema {
  query: Query
  mutation: Mutation
}
`

// NewGraphQLServer 创建GraphQL服务，path 为 API 端点
func NewGraphQLServer(services *service.Services, path string, logger *zap.Logger) *GraphQLServer {
	resolver := NewResolver(services, logger)

	schema := graphql.MustParseSchema(schemaString, resolver)

	if path == "" {
		path = "/graphql"
	}
	return &GraphQLServer{
		schema:   schema,
		handler:  &relay.Handler{Schema: schema},
		resolver: resolver,
		path:     path,
	}
}

// Path API端点路径
func (s *GraphQLServer) Path() string {
	return s.path
}

// Schema 返回解析后的Schema
func (s *GraphQLServer) Schema() *graphql.Schema {
	return s.schema
}

// Handler GraphQL API处理器
func (s *GraphQLServer) Handler() http.Handler {
	return s.handler
}

// PlaygroundHandler GraphQL Playground页面
func (s *GraphQLServer) PlaygroundHandler() http.Handler {
	page := []byte(playgroundHTML(s.path))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	})
}

func playgroundHTML(endpoint string) string {
	return `
<!DOCTYPE html>
<html>
<head>
  <meta charset=utf-8/>
  <meta name="viewport" content="user-scalable=no, initial-scale=1.0, minimum-scale=1.0, maximum-scale=1.0, minimal-ui">
  <title>Agenda Vote GraphQL Playground</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/static/css/index.css" />
  <link rel="shortcut icon" href="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/favicon.png" />
  <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react@1.7.22/build/static/js/middleware.js"></script>
</head>
<body>
  <div id="root"></div>
  <script>window.addEventListener('load', function (event) {
      GraphQLPlayground.init(document.getElementById('root'), {
        endpoint: '` + endpoint + `'
      })
    })</script>
</body>
</html>
`
}
