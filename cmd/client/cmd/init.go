// cmd/client/cmd/init.go
package cmd

import (
	"surveysync/cmd/client/cmd/auth"
	"surveysync/cmd/client/cmd/master"
	"surveysync/cmd/client/cmd/survey"
	"surveysync/cmd/client/cmd/sync"
)

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.WhoamiCmd)

	rootCmd.AddCommand(survey.SurveyCmd)
	survey.SurveyCmd.AddCommand(survey.CreateCmd)
	survey.SurveyCmd.AddCommand(survey.ListCmd)
	survey.SurveyCmd.AddCommand(survey.GetCmd)
	survey.SurveyCmd.AddCommand(survey.SubmitCmd)
	survey.SurveyCmd.AddCommand(survey.DeleteCmd)
	survey.SurveyCmd.AddCommand(survey.FloorCmd)
	survey.FloorCmd.AddCommand(survey.FloorAddCmd)
	survey.FloorCmd.AddCommand(survey.FloorRemoveCmd)
	survey.SurveyCmd.AddCommand(survey.PhotoCmd)
	survey.PhotoCmd.AddCommand(survey.PhotoAttachCmd)
	survey.PhotoCmd.AddCommand(survey.PhotoListCmd)

	rootCmd.AddCommand(sync.SyncCmd)

	rootCmd.AddCommand(master.MasterCmd)
	master.MasterCmd.AddCommand(master.RefreshCmd)
	master.MasterCmd.AddCommand(master.ShowCmd)
	master.MasterCmd.AddCommand(master.SetPrimaryCmd)
}
