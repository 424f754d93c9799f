package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reliefworks/floodscan/assessor"
	"github.com/reliefworks/floodscan/config"
	"github.com/reliefworks/floodscan/database"
)

var recordsLimit int

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "maximum number of records to list")
	rootCmd.AddCommand(recordsCmd)
}

var recordsCmd = &cobra.Command{
	Use:   "records [assessment-id]",
	Short: "Lists recent assessment records, or prints one claim document by id",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		databaseURL := cfg.PostgresURL
		if databaseURL == "" && cfg.PostgresSecretPath != "" {
			awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
			if err != nil {
				log.Fatal(err)
			}
			secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)
			result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.PostgresSecretPath)})
			if err != nil {
				log.Fatal(err.Error())
			}
			var pgSecrets config.PostgresSecretData
			if err := json.Unmarshal([]byte(*result.SecretString), &pgSecrets); err != nil {
				log.Fatalf("postgres secrets read error: %v", err)
			}
			databaseURL = pgSecrets.ConnectionString
		}
		if databaseURL == "" {
			log.Fatal("no database configured")
		}

		db := database.NewDatabase(databaseURL)
		if err := db.Connect(cmd.Context()); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer db.Disconnect()

		if len(args) == 1 {
			record, err := db.GetAssessment(cmd.Context(), args[0])
			if err != nil {
				log.Fatalf("error reading assessment: %v", err)
			}
			if record == nil {
				log.Fatalf("no assessment found with id %s", args[0])
			}
			fmt.Print(assessor.RenderClaimDocument(record.Result, record.Created))
			return
		}

		records, err := db.ListRecentAssessments(cmd.Context(), recordsLimit)
		if err != nil {
			log.Fatalf("error listing assessments: %v", err)
		}
		for _, record := range records {
			fmt.Printf("%s  %s  safety=%d/100  %s\n",
				record.ID,
				record.Created.Format("2006-01-02 15:04"),
				record.Result.SafetyScore,
				record.Result.PropertyID,
			)
		}
	},
}
