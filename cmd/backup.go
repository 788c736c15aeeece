package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-minifs/internal/backup"
	"github.com/deploymenttheory/go-minifs/internal/device"
	"github.com/deploymenttheory/go-minifs/pkg/app"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store and restore images in S3",
	Long: `Upload gzip-compressed copies of the image to an S3 bucket, list them
and restore one over the local image. The bucket comes from backup.bucket
or MINIFS_BACKUP_BUCKET.`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		svc, imagePath, err := newBackupService(ctx)
		if err != nil {
			return err
		}

		key, err := svc.Push(ctx, imagePath)
		if err != nil {
			return app.NewError(app.ErrCodeRemote, "backup failed", err)
		}
		ctx.Print("%s", key)
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull <key>",
	Short: "Replace the image with a stored backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		svc, imagePath, err := newBackupService(ctx)
		if err != nil {
			return err
		}

		if err := svc.Pull(ctx, args[0], imagePath); err != nil {
			return app.NewError(app.ErrCodeRemote, "restore failed", err)
		}
		ctx.Print("Restored %s", imagePath)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext(cmd)
		svc, _, err := newBackupService(ctx)
		if err != nil {
			return err
		}

		keys, err := svc.List(ctx)
		if err != nil {
			return app.NewError(app.ErrCodeRemote, "listing backups failed", err)
		}
		for _, key := range keys {
			ctx.Print("%s", key)
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupPushCmd, backupPullCmd, backupListCmd)
	rootCmd.AddCommand(backupCmd)
}

func newBackupService(ctx *app.Context) (*backup.Service, string, error) {
	deviceConfig, err := device.LoadDeviceConfig(viper.GetViper())
	if err != nil {
		return nil, "", invalidInput("invalid device configuration", err)
	}
	config, err := backup.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, "", invalidInput("invalid backup configuration", err)
	}

	store, err := backup.NewS3ObjectStore(config.Region)
	if err != nil {
		return nil, "", app.NewError(app.ErrCodeRemote, "cannot create S3 session", err)
	}

	ctx.Log("backup target", "bucket", config.Bucket, "prefix", config.Prefix, "region", config.Region)
	svc := backup.NewService(store, device.NewFileOpener(deviceConfig), config, ctx.Logger)
	return svc, deviceConfig.ImagePath, nil
}
