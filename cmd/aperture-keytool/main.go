// aperture-keytool is the offline recovery companion: it generates and
// checks recovery phrases and re-derives identity keys without touching any
// service. Keys are printed Base64-encoded, the way they cross every
// transport boundary.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"aperture-share/go-backend/internal/identity"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	generate := flag.Bool("generate", false, "generate a new recovery phrase and identity keypair")
	derive := flag.Bool("derive", false, "re-derive the identity keypair from -phrase")
	validate := flag.Bool("validate", false, "check -phrase and exit 0/1")
	quiz := flag.Int("quiz", 0, "print N quiz positions for -phrase")
	phrase := flag.String("phrase", "", "recovery phrase input")
	withPrivate := flag.Bool("with-private", false, "also print the private key (handle with care)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aperture-keytool version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	switch {
	case *generate:
		p, err := identity.GeneratePhrase()
		if err != nil {
			log.Fatalf("generate phrase: %v", err)
		}
		printIdentity(p, *withPrivate)
	case *derive:
		requirePhrase(*phrase)
		printIdentity(*phrase, *withPrivate)
	case *validate:
		requirePhrase(*phrase)
		if !identity.ValidatePhrase(*phrase) {
			fmt.Println("invalid")
			os.Exit(1)
		}
		fmt.Println("valid")
	case *quiz > 0:
		requirePhrase(*phrase)
		positions, err := identity.QuizPositions(*quiz)
		if err != nil {
			log.Fatalf("quiz positions: %v", err)
		}
		for _, pos := range positions {
			fmt.Printf("word %d?\n", pos)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printIdentity(phrase string, withPrivate bool) {
	pair, err := identity.DeriveFromPhrase(phrase)
	if err != nil {
		log.Fatalf("derive identity: %v", err)
	}
	memberID, err := identity.MemberIDFromPublicKey(pair.PublicKey)
	if err != nil {
		log.Fatalf("member id: %v", err)
	}
	fmt.Printf("phrase:     %s\n", identity.NormalizePhrase(phrase))
	fmt.Printf("member_id:  %s\n", memberID)
	fmt.Printf("public_key: %s\n", identity.EncodeKey(pair.PublicKey))
	if withPrivate {
		fmt.Printf("private_key: %s\n", identity.EncodeKey(pair.PrivateKey))
	}
}

func requirePhrase(phrase string) {
	if strings.TrimSpace(phrase) == "" {
		log.Fatal("a -phrase is required")
	}
}
