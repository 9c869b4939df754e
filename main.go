package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"evoting-backend/encryption"
	"evoting-backend/models"
	"evoting-backend/registry"
	"evoting-backend/service"
)

type Config struct {
	StorageDir      string
	DatasetDir      string
	ElectionID      string
	SessionDuration time.Duration
	Difficulty      int
	MaxNonce        uint64
	MiningWorkers   int
	HEBackend       string
	SigBackend      string
	PaillierBits    int
	AutoEnroll      int
	Port            int
}

type EnrollVoterRequest struct {
	VoterID   string `json:"voter_id"`
	SampleHex string `json:"sample_hex,omitempty"`
}

type EnrollVoterResponse struct {
	VoterID    string `json:"voter_id"`
	TemplateID string `json:"template_id"`
	Public     string `json:"public"`
}

type CastVoteRequest struct {
	VoterID   string `json:"voter_id"`
	Candidate string `json:"candidate"`
}

type ChainResponse struct {
	ElectionID string          `json:"election_id"`
	BlockCount int             `json:"block_count"`
	Blocks     []*models.Block `json:"blocks"`
	IsValid    bool            `json:"is_valid"`
	LastHash   string          `json:"last_hash"`
}

type AuditResponse struct {
	ChainValid       bool `json:"chain_valid"`
	NullifiersUnique bool `json:"nullifiers_unique"`
}

type Server struct {
	votingService *service.VotingService
	voterRegistry *registry.VoterRegistry
}

func main() {
	config := parseFlags()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	votingService, err := initializeVotingService(config)
	if err != nil {
		log.Fatalf("Failed to initialize voting service: %v", err)
	}

	voterRegistry := registry.New()
	if config.DatasetDir != "" {
		if err := voterRegistry.LoadDataset(registry.Config{
			DatasetRoot: config.DatasetDir,
			MaxRecords:  config.AutoEnroll,
		}); err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
		}
	} else if config.AutoEnroll > 0 {
		voterRegistry.LoadTestData(config.AutoEnroll)
	}

	server := &Server{
		votingService: votingService,
		voterRegistry: voterRegistry,
	}

	if config.AutoEnroll > 0 {
		if err := server.enrollFromRegistry(); err != nil {
			log.Fatalf("Failed to enroll registry voters: %v", err)
		}
		log.Printf("Enrolled %d voters from registry", votingService.EnrolledCount())
	}

	http.HandleFunc("/api/enroll", server.handleEnrollVoter)
	http.HandleFunc("/api/vote", server.handleCastVote)
	http.HandleFunc("/api/status", server.handleGetStatus)
	http.HandleFunc("/api/end-session", server.handleEndSession)
	http.HandleFunc("/api/count-votes", server.handleCountVotes)
	http.HandleFunc("/api/results", server.handleGetResults)
	http.HandleFunc("/api/report", server.handleGetReport)

	http.HandleFunc("/api/blockchain", server.handleGetChain)
	http.HandleFunc("/api/blockchain/block", server.handleGetBlock)
	http.HandleFunc("/api/blockchain/validate", server.handleValidateChain)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	serverChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %d...", config.Port)
		serverChan <- http.ListenAndServe(fmt.Sprintf(":%d", config.Port), nil)
	}()

	select {
	case err := <-serverChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		votingService.EndVotingSession()
		if _, err := votingService.BuildReport(); err != nil {
			log.Printf("Error writing final report: %v", err)
		}
		log.Println("Server shutdown completed")
	}
}

func (s *Server) enrollFromRegistry() error {
	for _, record := range s.voterRegistry.All() {
		rec, err := s.voterRegistry.Lookup(record.VoterID)
		if err != nil {
			return err
		}
		if _, err := s.votingService.EnrollVoter(rec.VoterID, rec.Sample); err != nil {
			return fmt.Errorf("failed to enroll %s: %w", rec.VoterID, err)
		}
	}
	return nil
}

func (s *Server) handleEnrollVoter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EnrollVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sample, err := s.resolveSample(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	template, err := s.votingService.EnrollVoter(req.VoterID, sample)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	public, _ := s.votingService.PublicValue(req.VoterID)

	writeJSON(w, EnrollVoterResponse{
		VoterID:    req.VoterID,
		TemplateID: template.TemplateID,
		Public:     public.String(),
	})
}

// resolveSample takes the caller-provided sample when present, otherwise
// falls back to the registry record for the voter.
func (s *Server) resolveSample(req EnrollVoterRequest) ([]byte, error) {
	if req.SampleHex != "" {
		sample, err := hex.DecodeString(strings.TrimPrefix(req.SampleHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid sample hex: %w", err)
		}
		return sample, nil
	}

	record, err := s.voterRegistry.Lookup(req.VoterID)
	if err != nil {
		return nil, err
	}
	return record.Sample, nil
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("Processing vote for voter %s", req.VoterID)

	receipt, err := s.votingService.CastVote(req.VoterID, req.Candidate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, receipt)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.votingService.GetVoterStatistics()

	response := struct {
		ElectionID     string                    `json:"election_id"`
		EnrolledVoters int                       `json:"enrolled_voters"`
		VotedVoters    int                       `json:"voted_voters"`
		Voters         map[string]map[string]any `json:"voters"`
		VotingActive   bool                      `json:"voting_active"`
		HEBackend      string                    `json:"he_backend"`
		Metrics        service.MetricsResponse   `json:"metrics"`
	}{
		ElectionID:     s.votingService.ElectionID(),
		EnrolledVoters: stats.EnrolledCount,
		VotedVoters:    stats.VotedCount,
		Voters:         stats.VoterDetails,
		VotingActive:   s.votingService.IsVotingActive(),
		HEBackend:      s.votingService.SchemeName(),
		Metrics:        s.votingService.Metrics(),
	}

	writeJSON(w, response)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.votingService.EndVotingSession()
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleCountVotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, err := s.votingService.CountVotes()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count votes: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("Vote counting complete. Total votes: %d", results.TotalVotes)
	writeJSON(w, results)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, err := s.votingService.CountingService().GetLatestResults()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get results: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, results)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.votingService.BuildReport()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build report: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, report)
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	blocks := s.votingService.BlocksSnapshot()

	response := ChainResponse{
		ElectionID: s.votingService.ElectionID(),
		BlockCount: len(blocks),
		Blocks:     blocks,
		IsValid:    s.votingService.ValidateChain(),
		LastHash:   blocks[len(blocks)-1].HashHex(),
	}

	writeJSON(w, response)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	indexStr := r.URL.Query().Get("index")
	if indexStr == "" {
		http.Error(w, "Missing block index", http.StatusBadRequest)
		return
	}

	index, err := strconv.ParseUint(indexStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid block index", http.StatusBadRequest)
		return
	}

	blocks := s.votingService.BlocksSnapshot()
	if index >= uint64(len(blocks)) {
		http.Error(w, "Block not found", http.StatusNotFound)
		return
	}

	writeJSON(w, blocks[index])
}

func (s *Server) handleValidateChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.votingService.Audit(); err != nil {
		log.Printf("Ledger audit failed: %v", err)
	}

	writeJSON(w, AuditResponse{
		ChainValid:       s.votingService.ValidateChain(),
		NullifiersUnique: s.votingService.ValidateUniqueNullifiers(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.StorageDir, "storage", "data", "Directory for ledger and report storage")
	flag.StringVar(&config.DatasetDir, "dataset", "", "Fingerprint dataset root (optional)")
	flag.StringVar(&config.ElectionID, "election", "research_election_2026", "Election identifier")
	flag.DurationVar(&config.SessionDuration, "session", 24*time.Hour, "Voting session duration")
	flag.IntVar(&config.Difficulty, "difficulty", 3, "Mining difficulty (leading hex zeros, 1-16)")
	flag.Uint64Var(&config.MaxNonce, "max-nonce", 0, "Mining nonce ceiling (0 = unbounded)")
	flag.IntVar(&config.MiningWorkers, "mining-workers", 1, "Parallel nonce-search workers")
	flag.StringVar(&config.HEBackend, "he-backend", "toy", "Homomorphic tally backend (toy|paillier)")
	flag.StringVar(&config.SigBackend, "sig-backend", "dilithium", "Signature backend (dilithium|ecdsa)")
	flag.IntVar(&config.PaillierBits, "paillier-bits", 2048, "Paillier key size in bits")
	flag.IntVar(&config.AutoEnroll, "voters", 0, "Voters to enroll at startup from the registry")
	flag.IntVar(&config.Port, "port", 8080, "Server port")

	flag.Parse()

	if config.Difficulty < 1 || config.Difficulty > 16 {
		log.Fatal("Difficulty must be between 1 and 16")
	}

	return config
}

func initializeVotingService(config *Config) (*service.VotingService, error) {
	var scheme encryption.HomomorphicEncryptionScheme
	var err error
	switch config.HEBackend {
	case "toy":
		scheme, err = encryption.NewToyFHE()
	case "paillier":
		scheme, err = encryption.NewPaillierScheme(config.PaillierBits)
	default:
		return nil, fmt.Errorf("unknown homomorphic backend: %s", config.HEBackend)
	}
	if err != nil {
		return nil, err
	}

	var signer encryption.SignatureProvider
	switch config.SigBackend {
	case "dilithium":
		signer, err = encryption.NewDilithiumSigner()
	case "ecdsa":
		signer, err = encryption.NewECDSASigner()
	default:
		return nil, fmt.Errorf("unknown signature backend: %s", config.SigBackend)
	}
	if err != nil {
		return nil, err
	}

	return service.NewVotingService(service.Config{
		ElectionID:       config.ElectionID,
		StoragePath:      config.StorageDir,
		DifficultyPrefix: strings.Repeat("0", config.Difficulty),
		MaxNonce:         config.MaxNonce,
		MiningWorkers:    config.MiningWorkers,
		SessionDuration:  config.SessionDuration,
		Scheme:           scheme,
		Signer:           signer,
	})
}
