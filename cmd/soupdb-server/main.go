// Command soupdb-server exposes a SoupDB database over gRPC: two RPCs,
// Exec and Query, each taking raw command text and dispatching it through
// the executor. The service descriptor is hand-written rather than
// protoc-generated, and uses a JSON codec instead of protobuf wire
// encoding, since there is no .proto schema to generate from — SoupDB's
// own command grammar is the wire format.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/soupdb/soupdb"
)

var (
	flagGRPC    = flag.String("grpc", ":9091", "gRPC listen address")
	flagDataDir = flag.String("data-dir", "", "data directory (overrides config file's data_dir if set)")
	flagConfig  = flag.String("config", "soupdb.yaml", "path to a YAML config file")
	flagDB      = flag.String("db", "default", "database name to open")
)

type execRequest struct {
	Command string `json:"command"`
}

type execResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type queryRequest struct {
	Command string `json:"command"`
}

type queryResponse struct {
	Rows  []map[string]any `json:"rows"`
	Error string           `json:"error,omitempty"`
	Count int              `json:"count"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string                      { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// SoupDBServer is the service interface registered against the gRPC server.
type SoupDBServer interface {
	Exec(context.Context, *execRequest) (*execResponse, error)
	Query(context.Context, *queryRequest) (*queryResponse, error)
}

func registerSoupDBServer(s *grpc.Server, srv SoupDBServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "soupdb.SoupDB",
		HandlerType: (*SoupDBServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Exec", Handler: execHandler},
			{MethodName: "Query", Handler: queryHandler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "soupdb",
	}, srv)
}

func execHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(execRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SoupDBServer).Exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soupdb.SoupDB/Exec"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(SoupDBServer).Exec(ctx, req.(*execRequest)) }
	return interceptor(ctx, in, info, handler)
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(queryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SoupDBServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/soupdb.SoupDB/Query"}
	handler := func(ctx context.Context, req any) (any, error) { return srv.(SoupDBServer).Query(ctx, req.(*queryRequest)) }
	return interceptor(ctx, in, info, handler)
}

type server struct {
	db *soupdb.Database
}

func (s *server) Exec(ctx context.Context, req *execRequest) (*execResponse, error) {
	if _, err := s.db.Exec(req.Command); err != nil {
		return &execResponse{Success: false, Error: err.Error()}, nil
	}
	return &execResponse{Success: true}, nil
}

func (s *server) Query(ctx context.Context, req *queryRequest) (*queryResponse, error) {
	result, err := s.db.Exec(req.Command)
	if err != nil {
		return &queryResponse{Error: err.Error()}, nil
	}
	return &queryResponse{Rows: result.Rows, Count: len(result.Rows)}, nil
}

func main() {
	flag.Parse()

	cfg, err := soupdb.LoadConfig(*flagConfig)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *flagDataDir != "" {
		cfg.DataDir = *flagDataDir
	}

	db, err := soupdb.Open(cfg, *flagDB)
	if err != nil {
		log.Fatalf("open database %q: %v", *flagDB, err)
	}

	encoding.RegisterCodec(jsonCodec{})

	lis, err := net.Listen("tcp", *flagGRPC)
	if err != nil {
		log.Fatalf("listen on %s: %v", *flagGRPC, err)
	}

	gs := grpc.NewServer()
	registerSoupDBServer(gs, &server{db: db})
	log.Printf("soupdb-server: database %q listening on %s", *flagDB, *flagGRPC)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
