// Package skills maps free-text skill labels to resume skill categories.
package skills

import (
	"strings"
	"unicode"

	"github.com/jonathan/jobfit/internal/types"
)

// keywordSet matches a label when the label contains any of contains, or when
// one of its tokens equals any of words. Short keywords like "go" or "s3" are
// kept in words so they do not match inside longer names ("django", "mongodb").
type keywordSet struct {
	contains []string
	words    []string
}

func (k keywordSet) matches(lower string, tokens map[string]bool) bool {
	for _, kw := range k.contains {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, w := range k.words {
		if tokens[w] {
			return true
		}
	}
	return false
}

var (
	languageKeywords = keywordSet{
		contains: []string{"javascript", "typescript", "python", "java", "golang", "c++", "c#",
			"ruby", "php", "kotlin", "swift", "haskell", "elixir", "erlang", "clojure", "dart", "bash",
			"powershell", "solidity", "fortran", "cobol", "objective-c"},
		words: []string{"go", "c", "r", "rust", "scala", "perl", "lua"},
	}
	frontendKeywords = keywordSet{
		contains: []string{"react", "angular", "vue", "svelte", "next.js", "nextjs", "nuxt", "html",
			"sass", "tailwind", "redux", "webpack", "vite", "jquery", "bootstrap", "frontend",
			"front-end", "remix", "gatsby"},
		words: []string{"css", "css3", "scss"},
	}
	backendKeywords = keywordSet{
		contains: []string{"node", "express", "django", "flask", "fastapi", "spring", "rails",
			"laravel", "graphql", "grpc", "rest api", "restful", "microservice", "nestjs", ".net",
			"backend", "back-end", "kafka", "rabbitmq", "websocket"},
		words: []string{"gin", "api", "echo", "fiber"},
	}
	testingKeywords = keywordSet{
		contains: []string{"jest", "mocha", "cypress", "selenium", "playwright", "pytest", "junit",
			"testing", "vitest", "testify", "unit test", "integration test", "jasmine"},
		words: []string{"qa", "tdd", "bdd"},
	}
	databaseKeywords = keywordSet{
		contains: []string{"sql", "postgres", "mongo", "redis", "elasticsearch", "cassandra", "oracle",
			"mariadb", "cockroach", "neo4j", "firestore", "supabase", "prisma", "database", "couchdb",
			"clickhouse", "snowflake"},
	}
	cloudKeywords = keywordSet{
		contains: []string{"aws", "amazon", "azure", "gcp", "google cloud", "docker", "kubernetes",
			"terraform", "ansible", "jenkins", "ci/cd", "github actions", "gitlab ci", "heroku", "vercel",
			"netlify", "cloudformation", "helm", "nginx", "devops", "serverless", "linux", "openshift",
			"pulumi", "lambda", "cloudfront", "dynamodb", "fargate"},
		words: []string{"k8s", "ec2", "s3", "rds", "sqs", "sns", "ecs", "eks", "iam"},
	}
	awsServiceKeywords = keywordSet{
		contains: []string{"lambda", "cloudfront", "dynamodb", "fargate"},
		words:    []string{"ec2", "s3", "rds", "sqs", "sns", "ecs"},
	}
	aiMLKeywords = keywordSet{
		contains: []string{"machine learning", "deep learning", "tensorflow", "pytorch", "keras",
			"scikit", "pandas", "numpy", "langchain", "openai", "hugging", "computer vision", "llm",
			"neural", "nlp", "data science", "mlops"},
		words: []string{"ai", "ml"},
	}
)

// priority is the fixed order in which categories are checked; the first match wins.
var priority = []struct {
	category string
	keywords keywordSet
}{
	{types.CategoryLanguages, languageKeywords},
	{types.CategoryFrontend, frontendKeywords},
	{types.CategoryBackend, backendKeywords},
	{types.CategoryTesting, testingKeywords},
	{types.CategoryDatabases, databaseKeywords},
	{types.CategoryCloudDevops, cloudKeywords},
	{types.CategoryAIML, aiMLKeywords},
}

// Classify maps a skill label to a well-known category using keyword lists.
// Labels that match nothing go to tools.
func Classify(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return types.CategoryTools
	}
	tokens := tokenize(lower)

	for _, p := range priority {
		if !p.keywords.matches(lower, tokens) {
			continue
		}
		if p.category == types.CategoryCloudDevops && awsServiceKeywords.matches(lower, tokens) {
			return types.CategoryAWSServices
		}
		return p.category
	}
	return types.CategoryTools
}

// tokenize splits on anything that is not a letter, digit, '+' or '#', so
// "C/C++" yields "c" and "c++".
func tokenize(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}
